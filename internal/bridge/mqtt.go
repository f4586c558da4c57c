// Package bridge republishes forum events to an MQTT broker so external
// integrations (dashboards, notifiers) can consume them without holding
// a websocket to the API server. The bridge is just another hub
// subscriber: a slow or disconnected broker never affects writers or
// websocket clients.
//
// Events are published as JSON envelopes to "{prefix}/{event-name}",
// e.g. "seren/forum/post:created".
package bridge

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/ridglejessica55-prog/seren/internal/events"
	"github.com/ridglejessica55-prog/seren/internal/hub"
)

// DefaultTopicPrefix is the default MQTT topic prefix for forum events.
const DefaultTopicPrefix = "seren/forum"

// Config holds the configuration for an MQTT bridge.
type Config struct {
	// Broker is the MQTT broker URL (e.g., "tcp://broker.example.com:1883").
	Broker string
	// Username for MQTT authentication. Leave empty if not required.
	Username string
	// Password for MQTT authentication. Leave empty if not required.
	Password string
	// UseTLS enables TLS for the MQTT connection.
	UseTLS bool
	// ClientID is the MQTT client identifier. If empty, a random one is generated.
	ClientID string
	// TopicPrefix is the MQTT topic prefix (default: "seren/forum").
	TopicPrefix string
	// Logger is the logger to use. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Bridge subscribes to a hub and republishes every event over MQTT.
type Bridge struct {
	cfg    Config
	hub    *hub.Hub
	client paho.Client
	sub    *hub.Subscriber
	done   chan struct{}
	log    *slog.Logger
}

// New creates a bridge for the given hub.
func New(cfg Config, h *hub.Hub) *Bridge {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = DefaultTopicPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Bridge{
		cfg: cfg,
		hub: h,
		log: cfg.Logger.WithGroup("mqtt"),
	}
}

// Start connects to the broker and begins republishing events.
func (b *Bridge) Start(ctx context.Context) error {
	if b.cfg.Broker == "" {
		return errors.New("broker URL is required")
	}

	clientID := b.cfg.ClientID
	if clientID == "" {
		clientID = "seren-" + randomString(16)
	}

	opts := paho.NewClientOptions().
		AddBroker(b.cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(2 * time.Minute).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetCleanSession(true)

	if b.cfg.Username != "" {
		opts.SetUsername(b.cfg.Username)
	}
	if b.cfg.Password != "" {
		opts.SetPassword(b.cfg.Password)
	}
	if b.cfg.UseTLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	b.client = paho.NewClient(opts)

	token := b.client.Connect()
	if !token.WaitTimeout(30 * time.Second) {
		return errors.New("connection timeout")
	}
	if token.Error() != nil {
		return fmt.Errorf("connecting to broker: %w", token.Error())
	}

	b.sub = b.hub.Subscribe()
	b.done = make(chan struct{})
	go b.run()

	b.log.Info("bridge started", "broker", b.cfg.Broker, "prefix", b.cfg.TopicPrefix)
	return nil
}

func (b *Bridge) run() {
	defer close(b.done)

	for e := range b.sub.C {
		payload, err := events.Encode(e)
		if err != nil {
			b.log.Error("encode event", "event", e.Name(), "error", err)
			continue
		}
		topic := b.cfg.TopicPrefix + "/" + e.Name()

		token := b.client.Publish(topic, 0, false, payload)
		if !token.WaitTimeout(10 * time.Second) {
			b.log.Warn("timeout publishing to MQTT", "topic", topic)
			continue
		}
		if err := token.Error(); err != nil {
			b.log.Warn("publish failed", "topic", topic, "error", err)
		}
	}
}

// Stop unsubscribes from the hub, waits for the republish loop to drain,
// and disconnects from the broker.
func (b *Bridge) Stop() {
	if b.sub != nil {
		b.hub.Unsubscribe(b.sub)
		<-b.done
	}
	if b.client != nil {
		b.client.Disconnect(1000)
	}
}

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomString(length int) string {
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = charset[rand.IntN(len(charset))]
	}
	return string(buf)
}
