// Package kafkaevents mirrors settled billing records onto Kafka
// (C12), asynchronously and best-effort: a stalled or absent broker
// never blocks a command or the ticker. Modelled on the mape service's
// internal/kafkabus.Bus writer construction, guarded here by a
// breaker.Breaker instead of being called inline.
package kafkaevents

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"nrgchamp/hotelac/internal/billing"
	"nrgchamp/hotelac/internal/breaker"
)

// Publisher mirrors DetailRecords onto a per-room topic. A Publisher
// constructed with no brokers is a no-op — Publish returns immediately.
type Publisher struct {
	writer *kafka.Writer
	brk    *breaker.Breaker
	log    *slog.Logger
	queue  chan billing.DetailRecord
	done   chan struct{}
}

// New returns a Publisher for brokers, or a no-op Publisher if brokers
// is empty. Each record goes to the topic "billing.events." followed by
// its room id, e.g. "billing.events.14".
func New(brokers []string, log *slog.Logger) *Publisher {
	p := &Publisher{
		brk:  breaker.New(5, 30*time.Second),
		log:  log.With(slog.String("component", "kafka-events")),
		done: make(chan struct{}),
	}
	if len(brokers) == 0 {
		return p
	}

	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	p.queue = make(chan billing.DetailRecord, 256)
	go p.run()
	return p
}

func (p *Publisher) run() {
	for {
		select {
		case rec, ok := <-p.queue:
			if !ok {
				return
			}
			p.send(rec)
		case <-p.done:
			return
		}
	}
}

func (p *Publisher) send(rec billing.DetailRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := p.brk.Execute(ctx, func(ctx context.Context) error {
		return p.writer.WriteMessages(ctx, kafka.Message{
			Topic: topicFor(rec.RoomID),
			Key:   []byte(rec.ID.String()),
			Value: mustMarshal(rec),
		})
	})
	if err != nil {
		p.log.Warn("billing event publish failed", "room_id", rec.RoomID, "kind", rec.Kind, "error", err)
	}
}

// Publish enqueues rec for async mirroring. It never blocks the caller:
// when the queue is full the record is dropped with a warning. It is a
// no-op when the publisher has no broker configured.
func (p *Publisher) Publish(rec billing.DetailRecord) {
	if p.queue == nil {
		return
	}
	select {
	case p.queue <- rec:
	default:
		p.log.Warn("billing event queue full, dropping record", "room_id", rec.RoomID)
	}
}

// Close stops the publisher's background goroutine and closes its writer.
func (p *Publisher) Close() error {
	close(p.done)
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func topicFor(roomID int) string {
	return "billing.events." + itoa(roomID)
}
