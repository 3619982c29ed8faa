package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Publisher is the part of mqtt.Client the notifier uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTConfig configures the MQTT connection.
type MQTTConfig struct {
	Broker         string // e.g. tcp://localhost:1883
	ClientID       string
	TopicPrefix    string // reminders go to <prefix>/<prayer>
	ConnectTimeout time.Duration
	Logger         zerolog.Logger
}

// MQTTNotifier publishes reminders as JSON, one topic per prayer.
type MQTTNotifier struct {
	client  Publisher
	prefix  string
	timeout time.Duration
	logger  zerolog.Logger
}

type mqttPayload struct {
	Reminder
	LeadMinutes int `json:"lead_minutes"`
}

// NewMQTTNotifier wraps an already connected publisher.
func NewMQTTNotifier(client Publisher, prefix string, logger zerolog.Logger) *MQTTNotifier {
	return &MQTTNotifier{
		client:  client,
		prefix:  strings.Trim(prefix, "/"),
		timeout: 10 * time.Second,
		logger:  logger,
	}
}

// DialMQTT connects to the broker and returns a notifier and a function that
// disconnects it.
func DialMQTT(cfg MQTTConfig) (*MQTTNotifier, func(), error) {
	if cfg.ClientID == "" {
		cfg.ClientID = "prayer-times"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	logger := cfg.Logger
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.OnConnect = func(mqtt.Client) {
		logger.Info().Str("broker", cfg.Broker).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn().Err(err).Str("broker", cfg.Broker).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, nil, fmt.Errorf("failed to connect to MQTT broker %s: timed out after %s", cfg.Broker, cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", cfg.Broker, err)
	}

	n := NewMQTTNotifier(client, cfg.TopicPrefix, logger)
	n.timeout = cfg.ConnectTimeout
	return n, func() { client.Disconnect(250) }, nil
}

// Topic returns the topic a reminder is published to.
func (n *MQTTNotifier) Topic(r Reminder) string {
	if n.prefix == "" {
		return r.Prayer.Key()
	}
	return n.prefix + "/" + r.Prayer.Key()
}

// Notify publishes r with QoS 1 and waits for the broker to acknowledge it.
func (n *MQTTNotifier) Notify(ctx context.Context, r Reminder) error {
	payload, err := json.Marshal(mqttPayload{Reminder: r, LeadMinutes: int(r.Lead / time.Minute)})
	if err != nil {
		return fmt.Errorf("encoding reminder: %w", err)
	}

	topic := n.Topic(r)
	token := n.client.Publish(topic, 1, false, payload)

	timer := time.NewTimer(n.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("publishing to %s: timed out after %s", topic, n.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}

	n.logger.Debug().Str("topic", topic).Str("reminder_id", r.ID).Msg("reminder published")
	return nil
}
