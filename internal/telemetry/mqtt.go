// Package telemetry publishes observable events to an MQTT broker so other
// devices on the network can follow what Mudra is doing.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/events"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Sink delivers one payload to a topic.
type Sink interface {
	Publish(topic string, payload []byte) error
}

// ClientConfig holds MQTT client configuration
type ClientConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// Client is a connected MQTT client implementing Sink.
type Client struct {
	client mqtt.Client
}

// Connect opens a connection to the broker. The client reconnects on its own
// after a lost connection.
func Connect(config ClientConfig) (*Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetOnConnectHandler(connectHandler)
	opts.SetConnectionLostHandler(connectLostHandler)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Println("MQTT: Connected to broker:", config.Broker)
	return &Client{client: client}, nil
}

// Publish implements Sink with QoS 0, non-retained messages.
func (c *Client) Publish(topic string, payload []byte) error {
	token := c.client.Publish(topic, 0, false, payload)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() {
	c.client.Disconnect(250)
	log.Println("MQTT: Disconnected")
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Println("MQTT: Connection established")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Printf("MQTT: Connection lost: %v", err)
}

// MQTTPublisher forwards bus events to <prefix>/<event type>.
type MQTTPublisher struct {
	sink   Sink
	sub    *events.Subscription
	prefix string
}

// NewMQTTPublisher creates a publisher reading from sub.
func NewMQTTPublisher(sink Sink, sub *events.Subscription, prefix string) *MQTTPublisher {
	return &MQTTPublisher{
		sink:   sink,
		sub:    sub,
		prefix: strings.TrimSuffix(prefix, "/"),
	}
}

// Run publishes events until ctx is cancelled or the subscription closes.
// Publish failures are logged and the event is dropped.
func (p *MQTTPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-p.sub.C:
			if !ok {
				return
			}
			if err := p.publish(e); err != nil {
				log.Printf("Error publishing %s event: %v", e.Type, err)
			}
		}
	}
}

func (p *MQTTPublisher) publish(e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.sink.Publish(Topic(p.prefix, e.Type), payload)
}

// Topic returns the topic an event type is published on.
func Topic(prefix string, t events.Type) string {
	if prefix == "" {
		return string(t)
	}
	return prefix + "/" + string(t)
}
