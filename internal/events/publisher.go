// Package events publishes extraction lifecycle notifications over NATS
// so other tools (digests, notification bots) can react to them. A nil
// publisher is valid and drops everything, keeping NATS optional.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectExtractionSuggested is emitted after a model run produces suggestions.
const SubjectExtractionSuggested = "jobs.extraction.suggested"

// SubjectExtractionApplied is emitted after suggestions are written to a job.
const SubjectExtractionApplied = "jobs.extraction.applied"

// ExtractionSuggested describes a completed model run for one job.
type ExtractionSuggested struct {
	JobID    string   `json:"job_id"`
	RunID    string   `json:"run_id"`
	Source   string   `json:"source"`
	Warnings []string `json:"warnings"`
}

// ExtractionApplied describes suggested fields merged into a job record.
type ExtractionApplied struct {
	JobID  string   `json:"job_id"`
	Fields []string `json:"fields"`
}

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewPublisher(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: nc, logger: logger}, nil
}

// Publish marshals data and sends it on subject. Nil receivers drop the
// event; publish failures are logged, never surfaced, because events are
// advisory and must not fail the request that raised them.
func (p *Publisher) Publish(subject string, data any) {
	if p == nil || p.conn == nil {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		p.logger.Warn("marshal event payload", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn("publish event", "subject", subject, "error", err)
	}
}

func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}
