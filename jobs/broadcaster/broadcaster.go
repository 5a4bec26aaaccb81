// Package broadcaster implements a background job that periodically
// scans the outbox for unacknowledged change events and publishes them
// to Kafka.
package broadcaster

import (
	"context"
	"log"
	"time"

	"github.com/IBM/sarama"

	"maple/outbox"
)

const drainInterval = 250 * time.Millisecond

type Broadcaster struct {
	out      *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(
	out *outbox.Outbox,
	brokers []string,
	topic string,
) (*Broadcaster, error) {

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		out:      out,
		producer: producer,
		topic:    topic,
	}, nil
}

// ------------------------------------------------
// START LOOP
// ------------------------------------------------

func (b *Broadcaster) Start(ctx context.Context) {
	log.Println("[broadcaster] started")

	go func() {
		ticker := time.NewTicker(drainInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				b.drainOnce()
			}
		}
	}()
}

// ------------------------------------------------
// DRAIN LOGIC
// ------------------------------------------------

// drainOnce publishes every pending event. SENT is recorded before the
// publish attempt: a crash between publish and ack re-sends the event,
// so consumers see it at least once, never zero times.
func (b *Broadcaster) drainOnce() {
	_ = b.out.ScanPending(func(e *outbox.Event) error {
		_ = b.out.MarkSent(e.Seq)

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.ByteEncoder(seqKey(e.Seq)),
			Value: sarama.ByteEncoder(e.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			return nil // retry on the next tick
		}

		_ = b.out.MarkAcked(e.Seq)
		return nil
	})
}

func seqKey(seq uint64) []byte {
	buf := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		buf[i] = byte(seq)
		seq >>= 8
	}
	return buf
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
