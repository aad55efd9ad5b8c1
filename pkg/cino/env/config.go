// Package env configures reporters from command line flags and
// environment variables.
package env

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/denisbrodbeck/machineid"

	"github.com/robotalks/cino.go/pkg/cino"
	"github.com/robotalks/cino.go/pkg/cino/channel"
	"github.com/robotalks/cino.go/pkg/cino/channel/mqtt"
	"github.com/robotalks/cino.go/pkg/cino/channel/websocket"
)

// Config provides common options to set up a Reporter.
type Config struct {
	// ChannelURL lists output channels separated by commas, e.g.
	// stdout:
	// serial:///dev/ttyACM0?baud=9600&dsr=1
	// mqtt://host:1883/topic-prefix/
	// ws://host:8080/path
	ChannelURL string
	// DeviceID identifies this device on shared transports.
	DeviceID string
	// QuoteExpr quotes expression text to keep records valid JSON.
	QuoteExpr bool
}

var defaultConfig = Config{
	ChannelURL: "stdout:",
}

func init() {
	if val := os.Getenv("CINO_CHANNEL"); val != "" {
		defaultConfig.ChannelURL = val
	}
	if val := os.Getenv("CINO_DEVICE_ID"); val != "" {
		defaultConfig.DeviceID = val
	}
	if val, err := strconv.ParseBool(os.Getenv("CINO_QUOTE_EXPR")); err == nil {
		defaultConfig.QuoteExpr = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ChannelURL, "channel", defaultConfig.ChannelURL, "Output channel URLs, comma separated.")
	flag.StringVar(&defaultConfig.DeviceID, "device-id", defaultConfig.DeviceID, "Device ID, machine ID by default.")
	flag.BoolVar(&defaultConfig.QuoteExpr, "quote-expr", defaultConfig.QuoteExpr, "Quote expression text in check records.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// MachineID retrieves the unique ID identifying the machine, falling
// back to the host name.
func MachineID() string {
	if id, err := machineid.ID(); err == nil && id != "" {
		return id
	}
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	return "unknown"
}

// Device returns DeviceID or the machine ID if not set.
func (c *Config) Device() string {
	if c.DeviceID != "" {
		return c.DeviceID
	}
	return MachineID()
}

// NewChannel creates the channel described by ChannelURL. Multiple
// URLs create a channel.Tee.
func (c *Config) NewChannel() (channel.Channel, error) {
	var urls []string
	for _, item := range strings.Split(c.ChannelURL, ",") {
		if item = strings.TrimSpace(item); item != "" {
			urls = append(urls, item)
		}
	}
	switch len(urls) {
	case 0:
		return channel.Stdout(), nil
	case 1:
		return c.newChannel(urls[0])
	}
	tee := channel.NewTee()
	for _, item := range urls {
		ch, err := c.newChannel(item)
		if err != nil {
			return nil, err
		}
		tee.Add(ch)
	}
	return tee, nil
}

func (c *Config) newChannel(rawURL string) (channel.Channel, error) {
	if rawURL == "-" {
		return channel.Stdout(), nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid channel URL: %v", err)
	}
	switch u.Scheme {
	case "stdout":
		return channel.Stdout(), nil
	case "stderr":
		return channel.Stderr(), nil
	case "serial":
		return newSerial(u)
	case "mqtt", "mqtts":
		return mqtt.New(rawURL, c.Device())
	case "ws", "wss":
		return websocket.New(rawURL), nil
	default:
		return nil, fmt.Errorf("unknown channel URL scheme: %q", u.Scheme)
	}
}

func newSerial(u *url.URL) (*channel.Serial, error) {
	port := u.Path
	if port == "" {
		// serial:COM10
		port = u.Opaque
	}
	if port == "" {
		return nil, fmt.Errorf("serial port not specified")
	}
	query := u.Query()
	var baud int
	if val := query.Get("baud"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid baud rate: %q", val)
		}
		baud = n
	}
	s := channel.NewSerial(port, baud)
	if val := query.Get("dsr"); val != "" {
		dsr, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("invalid dsr: %q", val)
		}
		s.WaitDSR = dsr
	}
	return s, nil
}

// NewReporter creates a Reporter using current config.
func (c *Config) NewReporter() (*cino.Reporter, error) {
	ch, err := c.NewChannel()
	if err != nil {
		return nil, err
	}
	r := cino.NewReporter(ch)
	r.QuoteExpr = c.QuoteExpr
	return r, nil
}

// MustNewReporter creates a Reporter and fails on error.
func (c *Config) MustNewReporter() *cino.Reporter {
	r, err := c.NewReporter()
	if err != nil {
		log.Fatalln(err)
	}
	return r
}
