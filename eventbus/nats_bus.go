package eventbus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSBus mirrors UI events onto a NATS core subject so external observers
// (dashboards, recorders) can watch the avatar without holding an SSE
// connection to the bridge.
type NATSBus struct {
	nc      *nats.Conn
	subject string
}

type NATSConfig struct {
	URL     string
	Subject string
}

func NewNATSBus(cfg NATSConfig) (*NATSBus, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("avatar-bridge"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	subject := cfg.Subject
	if subject == "" {
		subject = "avatar.ui.events"
	}
	return &NATSBus{nc: nc, subject: subject}, nil
}

// Publish sends one UI event as a JSON message. Implements Publisher.
func (b *NATSBus) Publish(evt UIEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.nc.Publish(b.subject, data)
}

func (b *NATSBus) Close() {
	if b.nc != nil {
		b.nc.Drain()
	}
}
