// Package ingest enqueues sensor readings published over MQTT.
//
// Sensors publish to "aquafarm/<tenantId>/ponds/<pondId>/water" a JSON like
//
//	{"temperature": 27.5, "ph": 7.4, "dissolvedOxygen": 6.1, "recordedAt": "2026-04-01T06:00:00Z"}
//
// clientId and recordedAt are optional. When missing, a new UUID and the receiving time are used.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/queue"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

var (
	// ErrUnknownTopic is caused when a message arrives on a topic out of the reading topic layout.
	ErrUnknownTopic = errors.New("unknown topic")

	// ErrForeignTenant is caused when a message is for a tenant other than the agent's.
	ErrForeignTenant = errors.New("message is for another tenant")

	ErrMalformedMessage = errors.New("malformed message")
)

// SourceMQTT labels items enqueued by this package.
const SourceMQTT = "mqtt"

type message struct {
	ClientId        string     `json:"clientId,omitempty"`
	Temperature     *float64   `json:"temperature,omitempty"`
	PH              *float64   `json:"ph,omitempty"`
	DissolvedOxygen *float64   `json:"dissolvedOxygen,omitempty"`
	RecordedAt      *time.Time `json:"recordedAt,omitempty"`
}

// ParseTopic extracts tenant and pond from a reading topic.
func ParseTopic(topic string) (tenant.Id, string, error) {
	seg := strings.Split(topic, "/")
	if len(seg) != 5 || seg[0] != "aquafarm" || seg[2] != "ponds" || seg[4] != "water" || seg[3] == "" {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
	t, err := tenant.Parse(seg[1])
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", ErrUnknownTopic, topic, err)
	}
	return t, seg[3], nil
}

type Observer interface {
	Enqueued(source string)
}

type nopObserver struct{}

func (nopObserver) Enqueued(string) {}

// Handler turns messages into queued water readings.
type Handler struct {
	queue    *queue.Queue
	tenant   tenant.Id
	logger   *zap.Logger
	observer Observer
	now      func() time.Time
}

type HandlerOption func(*Handler)

func WithLogger(l *zap.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

func WithObserver(o Observer) HandlerOption {
	return func(h *Handler) { h.observer = o }
}

func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) { h.now = now }
}

// NewHandler creates a Handler accepting messages for tenant t only.
func NewHandler(q *queue.Queue, t tenant.Id, opts ...HandlerOption) *Handler {
	h := &Handler{
		queue:    q,
		tenant:   t,
		logger:   zap.NewNop(),
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Handle enqueues the reading in payload, published on topic.
func (h *Handler) Handle(ctx context.Context, topic string, payload []byte) (queue.Item, error) {
	t, pond, err := ParseTopic(topic)
	if err != nil {
		return queue.Item{}, err
	}
	if t != h.tenant {
		return queue.Item{}, fmt.Errorf("%w: %s", ErrForeignTenant, t)
	}

	var m message
	if err := json.Unmarshal(payload, &m); err != nil {
		return queue.Item{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	r := queue.WaterReading{
		ClientId:        m.ClientId,
		PondId:          &pond,
		Temperature:     m.Temperature,
		PH:              m.PH,
		DissolvedOxygen: m.DissolvedOxygen,
	}
	if r.ClientId == "" {
		r.ClientId = uuid.NewString()
	}
	if m.RecordedAt != nil {
		r.RecordedAt = *m.RecordedAt
	} else {
		r.RecordedAt = h.now().UTC()
	}

	item, err := h.queue.Enqueue(ctx, r)
	if err != nil {
		return queue.Item{}, err
	}
	h.observer.Enqueued(SourceMQTT)
	return item, nil
}

// Callback adapts Handle to a paho message handler. Rejected messages are logged and dropped.
func (h *Handler) Callback(ctx context.Context) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		item, err := h.Handle(ctx, msg.Topic(), msg.Payload())
		if err != nil {
			h.logger.Warn("message is dropped", zap.String("topic", msg.Topic()), zap.Error(err))
			return
		}
		h.logger.Debug("reading is queued", zap.String("topic", msg.Topic()), zap.Int64("seq", item.Seq))
	}
}
