package nats

import (
	"github.com/klauspost/compress/zstd"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// Publisher sends replay snapshots and gameplay events. A nil Publisher, or
// one without a server, drops everything.
type Publisher struct {
	conn    *nats.Conn
	enc     *zstd.Encoder
	breaker *gobreaker.CircuitBreaker[any]
}

func Connect(natsUrl string, breaker *gobreaker.CircuitBreaker[any]) *Publisher {
	if natsUrl == "" {
		// No NATS server configured, do nothing.
		log.Info("No nats server configured")
		return nil
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		log.WithError(err).Error("Failed to create zstd encoder")
		return nil
	}

	c, err := nats.Connect(natsUrl, nats.MaxReconnects(-1))
	if err != nil {
		log.WithError(err).Error("Failed to connect to nats")
		return nil
	}

	log.Info("Connected to nats at ", natsUrl)
	return &Publisher{conn: c, enc: enc, breaker: breaker}
}

func (p *Publisher) Publish(subject string, data []byte) {
	if p == nil || p.conn == nil {
		return
	}

	publish := func() (any, error) {
		return nil, p.conn.Publish(subject, data)
	}

	var err error
	if p.breaker != nil {
		_, err = p.breaker.Execute(publish)
	} else {
		_, err = publish()
	}
	if err != nil {
		log.WithError(err).WithField("subject", subject).Debug("Failed to publish message")
	}
}

// PublishCompressed zstd-compresses data before publishing.
func (p *Publisher) PublishCompressed(subject string, data []byte) {
	if p == nil || p.enc == nil {
		return
	}
	p.Publish(subject, Compress(p.enc, data))
}

func Compress(enc *zstd.Encoder, data []byte) []byte {
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2))
}

func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		log.WithError(err).Warn("Failed to drain nats connection")
	}
	_ = p.enc.Close()
}
