// Package websocket sends test records as WebSocket text frames.
package websocket

import (
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/cino.go/pkg/cino/channel"
)

// DefaultOrigin is sent when Origin is not specified.
const DefaultOrigin = "http://localhost/"

// Channel implements channel.Channel on a WebSocket connection.
// The harness may start listening after the device, so a failed dial
// is retried each time IsReady is polled.
type Channel struct {
	URL      string
	Origin   string
	Protocol string

	began bool
	conn  *websocket.Conn
	lock  sync.Mutex
}

// New creates a Channel for ws:// or wss:// URL.
func New(url string) *Channel {
	return &Channel{URL: url, Origin: DefaultOrigin}
}

// Begin implements channel.Channel.
func (c *Channel) Begin() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.began = true
	if c.conn == nil {
		if err := c.dial(); err != nil {
			glog.V(2).Infof("dial %s: %v", c.URL, err)
		}
	}
	return nil
}

// IsReady implements channel.Channel.
func (c *Channel) IsReady() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.began {
		return false
	}
	if c.conn == nil {
		if err := c.dial(); err != nil {
			glog.V(4).Infof("dial %s: %v", c.URL, err)
			return false
		}
	}
	return true
}

// WriteLine implements channel.Channel.
func (c *Channel) WriteLine(line string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.conn == nil {
		return channel.ErrNotReady
	}
	if err := websocket.Message.Send(c.conn, line+"\n"); err != nil {
		c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// Close implements io.Closer.
func (c *Channel) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.began = false
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Channel) dial() error {
	origin := c.Origin
	if origin == "" {
		origin = DefaultOrigin
	}
	conn, err := websocket.Dial(c.URL, c.Protocol, origin)
	if err != nil {
		return err
	}
	glog.V(2).Infof("connected %s", c.URL)
	c.conn = conn
	return nil
}
