// Package events announces entity changes over MQTT so that other consoles
// can reload the affected list.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Action string

const (
	Created Action = "created"
	Updated Action = "updated"
	Deleted Action = "deleted"
)

// Event is the payload published for every successful mutation.
type Event struct {
	Resource string    `json:"resource"`
	Action   Action    `json:"action"`
	ID       string    `json:"id"`
	At       time.Time `json:"at"`
}

// Topic returns "<prefix>/<resource>/<action>".
func (e Event) Topic(prefix string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + e.Resource + "/" + string(e.Action)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close()
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close()                               {}

// mqttClient is the subset of mqtt.Client used here.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Disconnect(quiesce uint)
}

const (
	qos          = 1
	tokenTimeout = 5 * time.Second
)

// MQTTPublisher publishes events as JSON at QoS 1.
type MQTTPublisher struct {
	client mqttClient
	prefix string
	log    logrus.FieldLogger
}

// Dial connects to broker and returns a publisher for topics under prefix.
func Dial(broker, clientID, prefix string, log logrus.FieldLogger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(tokenTimeout)
	client := mqtt.NewClient(opts)
	if err := wait(client.Connect()); err != nil {
		return nil, errors.Wrapf(err, "connect %s", broker)
	}
	return NewMQTTPublisher(client, prefix, log), nil
}

func NewMQTTPublisher(client mqttClient, prefix string, log logrus.FieldLogger) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: prefix, log: log}
}

func (p *MQTTPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	topic := e.Topic(p.prefix)
	token := p.client.Publish(topic, qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return errors.Wrapf(err, "publish %s", topic)
	}
	p.log.WithFields(logrus.Fields{
		"topic": topic,
		"id":    e.ID,
	}).Debug("Event published")
	return nil
}

// Subscribe delivers every event under the prefix to fn until the client
// is closed. Malformed payloads are logged and skipped.
func (p *MQTTPublisher) Subscribe(fn func(Event)) error {
	topic := strings.TrimSuffix(p.prefix, "/") + "/#"
	return errors.Wrapf(wait(p.client.Subscribe(topic, qos, func(_ mqtt.Client, m mqtt.Message) {
		var e Event
		if err := json.Unmarshal(m.Payload(), &e); err != nil {
			p.log.WithError(err).WithField("topic", m.Topic()).Warn("Discarding malformed event")
			return
		}
		fn(e)
	})), "subscribe %s", topic)
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

func wait(t mqtt.Token) error {
	if !t.WaitTimeout(tokenTimeout) {
		return errors.New("timed out waiting for broker")
	}
	return t.Error()
}
