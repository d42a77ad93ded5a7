// Package consumer streams Kafka activity events into the recommendation pipeline.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Reader describes the kafka.Reader functions the processor interacts with.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler processes decoded Kafka messages.
type Handler interface {
	Handle(context.Context, Message) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Message) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, msg Message) error { return f(ctx, msg) }

// Message represents a decoded Kafka record.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Payload   json.RawMessage
	Timestamp time.Time
	Headers   map[string]string
}

// Option configures processor behaviour.
type Option func(*Processor)

// WithLogger sets a custom logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithFetchBackoff sets the pause after a failed fetch.
func WithFetchBackoff(d time.Duration) Option {
	return func(p *Processor) { p.fetchBackoff = d }
}

// Processor coordinates the consumer loop. Each message is committed once
// the handler returns, whether or not it succeeded.
type Processor struct {
	reader       Reader
	handler      Handler
	logger       zerolog.Logger
	fetchBackoff time.Duration
}

// NewProcessor constructs a processor from a reader/handler pair.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:       reader,
		handler:      handler,
		logger:       zerolog.Nop(),
		fetchBackoff: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run consumes messages until ctx cancellation or until the reader is closed.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("reader closed: %w", err)
			}
			p.logger.Warn().Err(err).Msg("fetch error")
			fetchErrorCounter.Inc()
			if !sleep(ctx, p.fetchBackoff) {
				return ctx.Err()
			}
			continue
		}

		decoded := Message{
			Topic:     msg.Topic,
			Partition: msg.Partition,
			Offset:    msg.Offset,
			Key:       msg.Key,
			Payload:   append(json.RawMessage{}, msg.Value...),
			Timestamp: msg.Time,
			Headers:   make(map[string]string, len(msg.Headers)),
		}
		for _, header := range msg.Headers {
			decoded.Headers[header.Key] = string(header.Value)
		}

		log := p.logger.With().
			Str("topic", msg.Topic).
			Int("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Str("event_type", decoded.Headers["event_type"]).
			Logger()

		if err := p.handle(ctx, decoded); err != nil {
			recordFailure(decoded, err)
			log.Error().Err(err).Msg("handler error")
		} else {
			RecordProcessed(decoded)
			log.Debug().Msg("processed")
		}

		if err := p.reader.CommitMessages(ctx, msg); err != nil {
			commitErrorCounter.Inc()
			log.Warn().Err(err).Msg("commit error")
		}
	}
}

// handle invokes the handler and converts a panic into an error so the
// message is still committed.
func (p *Processor) handle(ctx context.Context, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return p.handler.Handle(ctx, msg)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
