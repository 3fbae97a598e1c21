// Package nats publishes customs summary changes on a NATS subject and lets
// tools follow them.
package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/99minutos/customs-tracking/internal/core/ports"
	"github.com/99minutos/customs-tracking/internal/infrastructure/resilience"
)

const DefaultSubject = "customs.summary.updated"

type Options struct {
	Name                 string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	Executor             *resilience.Executor
}

// Broker implements ports.SummaryPublisher.
type Broker struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
	log      zerolog.Logger
}

func Connect(url, subject string, opts Options, log zerolog.Logger) (*Broker, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	name := opts.Name
	if name == "" {
		name = "customs-tracking"
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := opts.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := opts.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if opts.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *opts.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name(name),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Broker{conn: conn, subject: subject, executor: opts.Executor, log: log}, nil
}

func (b *Broker) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

// PublishSummaryChanged sends change as JSON. The tracking number also goes
// into the Nats-Msg-Id header so JetStream consumers can dedupe.
func (b *Broker) PublishSummaryChanged(ctx context.Context, change ports.SummaryChange) error {
	msg, err := encodeChange(b.subject, change)
	if err != nil {
		return err
	}

	call := func(_ context.Context) error {
		if err := b.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if b.executor != nil {
		return b.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	}
	return call(ctx)
}

// Watch delivers every summary change to handler until ctx is done, then
// drains the subscription.
func (b *Broker) Watch(ctx context.Context, handler func(context.Context, ports.SummaryChange) error) error {
	sub, err := b.conn.Subscribe(b.subject, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		change, err := decodeChange(msg.Data)
		if err != nil {
			b.log.Warn().Err(err).Str("subject", msg.Subject).Msg("skipping malformed summary change")
			return
		}
		if err := handler(ctx, change); err != nil {
			b.log.Error().Err(err).Str("tracking", change.TrackingNumber).Msg("summary change handler failed")
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := b.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := b.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func encodeChange(subject string, change ports.SummaryChange) (*nats.Msg, error) {
	data, err := sonic.Marshal(change)
	if err != nil {
		return nil, fmt.Errorf("encode summary change: %w", err)
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, change.TrackingNumber+":"+string(change.Current)+":"+change.ChangedAt.UTC().Format(time.RFC3339Nano))
	msg.Header.Set("Customs-Status", string(change.Current))
	return msg, nil
}

func decodeChange(data []byte) (ports.SummaryChange, error) {
	var change ports.SummaryChange
	if err := sonic.Unmarshal(data, &change); err != nil {
		return ports.SummaryChange{}, fmt.Errorf("decode summary change: %w", err)
	}
	if change.TrackingNumber == "" {
		return ports.SummaryChange{}, errors.New("decode summary change: missing tracking number")
	}
	return change, nil
}

func classifyNATSError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrDisconnected) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
