package mqtt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kubakubakuba/templogger/internal/config"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Subscriber struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once

	handlerMu sync.RWMutex
	// handler is called for each valid reading
	handler func(reading types.Reading) error
}

// MQTTSubscriber interface for attaching message handlers
type MQTTSubscriber interface {
	SetMessageHandler(handler func(reading types.Reading) error)
}

// SetMessageHandler sets the handler for incoming readings
func (s *Subscriber) SetMessageHandler(handler func(reading types.Reading) error) {
	s.handlerMu.Lock()
	s.handler = handler
	s.handlerMu.Unlock()
}

func (s *Subscriber) messageHandler() func(reading types.Reading) error {
	s.handlerMu.RLock()
	defer s.handlerMu.RUnlock()
	return s.handler
}

func NewSubscriber(cfg config.Config, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Subscriber{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Subscribing from the connect handler restores the subscription after reconnects.
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		s.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
		if err := s.subscribe(c); err != nil {
			logger.Error("mqtt subscribe failed", "topic", cfg.MQTTTopic, "error", err)
		}
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = mqtt.NewClient(opts)
	return s
}

// Connect establishes connection to the MQTT broker. The topic subscription
// is made by the on-connect handler.
func (s *Subscriber) Connect(ctx context.Context) error {
	select {
	case <-s.stopCh:
		return fmt.Errorf("subscriber stopped")
	default:
	}

	if s.IsConnected() {
		return nil
	}

	token := s.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			s.client.Disconnect(0)
			return ctx.Err()
		case <-s.stopCh:
			s.client.Disconnect(0)
			return fmt.Errorf("subscriber stopped")
		default:
		}
	}
}

func (s *Subscriber) subscribe(c mqtt.Client) error {
	topic := s.cfg.MQTTTopic
	qos := byte(1)

	token := c.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}

	s.logger.Info("subscribed to mqtt topic", "topic", topic, "qos", qos)
	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	s.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	reading, err := parseReading(s.cfg.MQTTTopic, topic, payload)
	if err != nil {
		s.logger.Warn("invalid reading message",
			"topic", topic,
			"error", err,
			"payload", string(payload),
		)
		return
	}

	handler := s.messageHandler()
	if handler == nil {
		return
	}
	if err := handler(reading); err != nil {
		s.logger.Error("message handler failed",
			"topic", topic,
			"room", reading.Room,
			"error", err,
		)
		return
	}
	s.logger.Debug("processed reading message", "room", reading.Room)
}

type readingPayload struct {
	Room        string     `json:"room"`
	Temperature *float64   `json:"temperature"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// parseReading accepts either a bare number or a JSON object. The room comes
// from the payload or, failing that, from the topic level matched by "+".
func parseReading(filter, topic string, payload []byte) (types.Reading, error) {
	var r types.Reading
	trimmed := bytes.TrimSpace(payload)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var p readingPayload
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return types.Reading{}, fmt.Errorf("decode payload: %w", err)
		}
		if p.Temperature == nil {
			return types.Reading{}, fmt.Errorf("temperature is required")
		}
		r.Room = strings.TrimSpace(p.Room)
		r.Temperature = *p.Temperature
		if p.Timestamp != nil {
			r.Timestamp = *p.Timestamp
		}
	} else {
		v, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil {
			return types.Reading{}, fmt.Errorf("payload is not a number: %w", err)
		}
		r.Temperature = v
	}

	if r.Room == "" {
		r.Room = roomFromTopic(filter, topic)
	}
	if r.Room == "" {
		return types.Reading{}, fmt.Errorf("room is required")
	}
	if math.IsNaN(r.Temperature) || math.IsInf(r.Temperature, 0) {
		return types.Reading{}, fmt.Errorf("temperature must be finite")
	}
	return r, nil
}

// roomFromTopic returns the topic level that matches the first "+" wildcard of filter.
func roomFromTopic(filter, topic string) string {
	fl := strings.Split(filter, "/")
	tl := strings.Split(topic, "/")
	for i, f := range fl {
		if f == "+" && i < len(tl) {
			return tl[i]
		}
	}
	return ""
}

// IsConnected returns whether the client is connected.
func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Disconnect stops the subscriber and closes the MQTT connection.
// Idempotent and safe to call multiple times.
func (s *Subscriber) Disconnect() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	if s.client != nil && s.IsConnected() {
		token := s.client.Unsubscribe(s.cfg.MQTTTopic)
		token.WaitTimeout(2 * time.Second)
	}

	if s.client != nil {
		s.client.Disconnect(250)
	}

	s.setConnected(false)
	s.logger.Info("mqtt subscriber disconnected")
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
