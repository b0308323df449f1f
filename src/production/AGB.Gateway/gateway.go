package gateway

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Config"
	logger "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Logger"
	metrics "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Metrics"
	telemetry "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Telemetry"
)

// Gateway is the single broker connection for the whole process,
// constructed once at startup and passed by reference into adapters and
// the pump dispatcher. Inbound it feeds telemetry topics into the shared
// ingestion use case; outbound it publishes pump commands.
type Gateway struct {
	cfg       config.MQTTConfig
	brokerURL string
	client    mqtt.Client
	ingest    *telemetry.IngestService
	log       *logger.Logger
}

func New(cfg *config.Config, ingest *telemetry.IngestService, log *logger.Logger) *Gateway {
	return &Gateway{
		cfg:       cfg.MQTT,
		brokerURL: cfg.GetMQTTBrokerURL(),
		ingest:    ingest,
		log:       log.WithComponent("gateway"),
	}
}

// Connect dials the broker, retrying with exponential backoff, and
// subscribes to the sensor and uplink topic namespaces.
func (g *Gateway) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(g.brokerURL).
		SetClientID(g.cfg.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(g.cfg.KeepAlive).
		SetPingTimeout(g.cfg.PingTimeout).
		SetAutoReconnect(true).
		SetCleanSession(false)

	if g.cfg.BrokerUser != "" {
		opts.SetUsername(g.cfg.BrokerUser)
		opts.SetPassword(g.cfg.BrokerPass)
	}

	if g.cfg.UseTLS {
		tlsCfg, err := g.tlsConfig(g.cfg.CACertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		g.log.ErrorWithError(err, "mqtt connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		for _, topic := range []string{g.cfg.SensorTopic, g.cfg.UplinkTopic} {
			g.log.WithField("topic", topic).Info("mqtt connected, subscribing")
			if token := c.Subscribe(topic, 1, g.onTelemetry); token.Wait() && token.Error() != nil {
				g.log.WithField("topic", topic).ErrorWithError(token.Error(), "subscribe failed")
			}
		}
	}

	g.client = mqtt.NewClient(opts)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	err := backoff.Retry(func() error {
		if token := g.client.Connect(); token.Wait() && token.Error() != nil {
			g.log.ErrorWithError(token.Error(), "mqtt connect failed, retrying")
			return token.Error()
		}
		return nil
	}, bo)
	if err != nil {
		return fmt.Errorf("could not establish MQTT connection after retries: %w", err)
	}

	g.log.WithField("broker", g.brokerURL).Info("connected to MQTT broker")
	return nil
}

// onTelemetry is the per-message boundary: every error stays here, so one
// malformed or unknown-device message never takes the adapter down or
// touches other in-flight messages. Sensor and uplink topics share this
// one handler; the normalizer unwraps envelopes transparently.
func (g *Gateway) onTelemetry(_ mqtt.Client, m mqtt.Message) {
	metrics.EventsIngested.WithLabelValues("mqtt").Inc()
	if err := g.HandleTelemetry(context.Background(), m.Payload()); err != nil {
		g.log.WithField("topic", m.Topic()).ErrorWithError(err, "telemetry message dropped")
		return
	}
	g.log.WithField("topic", m.Topic()).Debug("telemetry message ingested")
}

// HandleTelemetry runs one raw payload through the shared ingestion use
// case. It is the exact same path the HTTP ingestion endpoint uses.
func (g *Gateway) HandleTelemetry(ctx context.Context, payload []byte) error {
	ev, err := telemetry.ParseEvent(payload)
	if err != nil {
		return err
	}
	_, err = g.ingest.Ingest(ctx, ev)
	return err
}

type pumpCommand struct {
	Command   string `json:"command"`
	Timestamp string `json:"timestamp"`
}

// PublishPumpCommand dispatches a pump command to the device's control
// topic as a detached unit of work. The outcome reaches the log sink
// only: no retry, no propagation, at-most-once from the caller's view.
func (g *Gateway) PublishPumpCommand(deviceID string, on bool) {
	command := "OFF"
	if on {
		command = "ON"
	}
	payload, err := json.Marshal(pumpCommand{
		Command:   command,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		g.log.ErrorWithError(err, "failed to marshal pump command")
		return
	}

	topic := fmt.Sprintf("%s/%s/control", g.cfg.PumpTopicPrefix, deviceID)
	go func() {
		token := g.client.Publish(topic, 1, false, payload)
		if token.Wait() && token.Error() != nil {
			g.log.WithField("topic", topic).ErrorWithError(token.Error(), "pump command publish failed")
			return
		}
		g.log.WithField("topic", topic).WithField("command", command).Info("pump command published")
	}()
}

// IsConnected reports broker connectivity for health checks.
func (g *Gateway) IsConnected() bool {
	return g.client != nil && g.client.IsConnected()
}

// Disconnect closes the broker connection.
func (g *Gateway) Disconnect() {
	if g.client != nil && g.client.IsConnected() {
		g.client.Disconnect(500)
	}
}

func (g *Gateway) tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file")
	}
	cfg.RootCAs = cp
	return cfg, nil
}
