package mqtt

import (
	"net/url"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Queue wraps an MQTT client with a topic prefix.
type Queue struct {
	Client       paho.Client
	TopicPrefix  string
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	subs map[string]Handler
	lock sync.Mutex
}

// Handler handles a received message, topic is without prefix.
type Handler func(topic string, payload []byte)

// ConnectHandler is to handle connect/disconnect events.
type ConnectHandler func(*Queue)

// ClientOptionsFromURL creates ClientOptions from URL.
// The URL path becomes the topic prefix.
func ClientOptionsFromURL(brokerURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, "", err
	}
	var server string
	switch u.Scheme {
	case "", "mqtt":
		server = "tcp"
	case "mqtts":
		server = "ssl"
	default:
		server = u.Scheme
	}
	server += "://" + u.Host

	topicPrefix := strings.TrimPrefix(u.Path, "/")
	if topicPrefix != "" && !strings.HasSuffix(topicPrefix, "/") {
		topicPrefix += "/"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, topicPrefix, nil
}

// NewQueue creates Queue.
func NewQueue(options *paho.ClientOptions, topicPrefix string) *Queue {
	q := &Queue{TopicPrefix: topicPrefix}
	options.SetOnConnectHandler(q.onConnect)
	options.SetConnectionLostHandler(q.onConnectionLost)
	q.Client = paho.NewClient(options)
	return q
}

// Connect starts connecting the client.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// IsConnected tells if the connection is currently up.
func (q *Queue) IsConnected() bool {
	return q.Client.IsConnectionOpen()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(250)
	return nil
}

// PubWith publishes with QoS and retain settings.
func (q *Queue) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	if glog.V(2) {
		glog.Infof("PUB %q", q.TopicPrefix+topic)
	}
	return q.Client.Publish(q.TopicPrefix+topic, qos, retain, payload)
}

// Sub subscribes a topic, which may contain wildcards. Subscriptions
// are restored after reconnecting.
func (q *Queue) Sub(topic string, handler Handler) paho.Token {
	q.lock.Lock()
	if q.subs == nil {
		q.subs = make(map[string]Handler)
	}
	q.subs[topic] = handler
	q.lock.Unlock()
	return q.subscribe(topic, handler)
}

func (q *Queue) subscribe(topic string, handler Handler) paho.Token {
	return q.Client.Subscribe(q.TopicPrefix+topic, 0, func(c paho.Client, msg paho.Message) {
		handler(strings.TrimPrefix(msg.Topic(), q.TopicPrefix), msg.Payload())
	})
}

func (q *Queue) resubscribe() {
	q.lock.Lock()
	defer q.lock.Unlock()
	for topic, handler := range q.subs {
		q.subscribe(topic, handler)
	}
}

func (q *Queue) onConnect(paho.Client) {
	glog.Info("connected")
	q.resubscribe()
	if h := q.OnConnect; h != nil {
		h(q)
	}
}

func (q *Queue) onConnectionLost(c paho.Client, err error) {
	glog.Warningf("connection lost: %v", err)
	if h := q.OnDisconnect; h != nil {
		h(q)
	}
}
