package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/influxenergy/influx/pkg/log"
	"github.com/influxenergy/influx/pkg/types"
	"github.com/levenlabs/go-lflag"
)

const (
	mqttQoS            = 1
	mqttConnectTimeout = 10 * time.Second
)

// mqttClient is the subset of mqtt.Client used by MQTT.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes each bundle as a retained message so new subscribers
// immediately receive the latest bundle.
type MQTT struct {
	broker   string
	topic    string
	clientID string
	client   mqttClient
}

func configuredMQTT() *MQTT {
	broker := lflag.String("mqtt-broker", "", "MQTT broker URL (e.g. tcp://localhost:1883)")
	topic := lflag.String("mqtt-topic", "influx/insights", "MQTT topic bundles are published to")
	clientID := lflag.String("mqtt-client-id", "", "MQTT client ID (defaults to a random ID)")

	m := &MQTT{}
	lflag.Do(func() {
		m.broker = *broker
		m.topic = *topic
		m.clientID = *clientID
		if m.clientID == "" {
			m.clientID = "influx-" + uuid.NewString()
		}
	})
	return m
}

// Validate checks if the publisher is properly configured.
func (m *MQTT) Validate() error {
	if m.broker == "" {
		return fmt.Errorf("mqtt-broker is required")
	}
	if m.topic == "" {
		return fmt.Errorf("mqtt-topic is required")
	}
	return nil
}

// Init connects to the broker.
func (m *MQTT) Init() error {
	opts := mqtt.NewClientOptions().
		AddBroker(m.broker).
		SetClientID(m.clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(mqttConnectTimeout)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return fmt.Errorf("timed out connecting to mqtt broker %s", m.broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to mqtt broker %s: %w", m.broker, err)
	}
	m.client = client
	return nil
}

// Publish implements Publisher.
func (m *MQTT) Publish(ctx context.Context, bundle types.Bundle) error {
	payload, err := encodeBundle(bundle)
	if err != nil {
		return err
	}
	token := m.client.Publish(m.topic, mqttQoS, true, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publishing bundle to mqtt: %w", ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish bundle to mqtt topic %s: %w", m.topic, err)
	}
	log.Ctx(ctx).DebugContext(ctx, "published bundle to mqtt", slog.String("topic", m.topic), slog.String("bundleID", bundle.ID))
	return nil
}

// Close implements Publisher.
func (m *MQTT) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}
