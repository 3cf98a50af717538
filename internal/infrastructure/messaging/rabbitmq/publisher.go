package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/metrics"
)

const (
	DefaultExchange = "users.events"

	appID = "user-service"
	// schemaVersion is bumped when the JSON body changes incompatibly.
	schemaVersion int32 = 1

	// publishWait bounds a publish when the caller's ctx has no deadline.
	publishWait = 2 * time.Second
	// returnGrace is how long a late basic.return may trail its ack.
	returnGrace = 50 * time.Millisecond
)

var errChannelClosed = errors.New("rabbitmq channel closed")

// session is one connection plus its confirm-mode channel.
type session struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	confirms <-chan amqp.Confirmation
	returns  <-chan amqp.Return
}

func (s *session) alive() bool {
	return s != nil && !s.conn.IsClosed() && !s.ch.IsClosed()
}

func (s *session) close() {
	if s == nil {
		return
	}
	_ = s.ch.Close()
	_ = s.conn.Close()
}

func openSession(url, exchange string) (*session, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	fail := func(step string, err error) (*session, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq %s: %w", step, err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fail("exchange declare", err)
	}
	if err := ch.Confirm(false); err != nil {
		return fail("confirm mode", err)
	}

	return &session{
		conn:     conn,
		ch:       ch,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
		returns:  ch.NotifyReturn(make(chan amqp.Return, 1)),
	}, nil
}

// Publisher sends account events to a topic exchange with publisher confirms
// and the mandatory flag, so an event nobody is bound to receive is an error.
// Publishes are serialized; the session is re-dialled lazily after a failure.
type Publisher struct {
	url      string
	exchange string

	mu sync.Mutex
	s  *session
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	s, err := openSession(url, exchange)
	if err != nil {
		return nil, err
	}
	return &Publisher{url: url, exchange: exchange, s: s}, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.close()
	p.s = nil
	return nil
}

// PublishAccountEvent implements the services' EventPublisher port.
func (p *Publisher) PublishAccountEvent(ctx context.Context, evt domain.AccountEvent) error {
	key, body, err := encodeEvent(evt)
	if err != nil {
		return err
	}
	err = p.publish(ctx, key, body)
	metrics.EventPublished(key, err)
	return err
}

// encodeEvent returns the routing key and JSON body for evt.
func encodeEvent(evt domain.AccountEvent) (string, []byte, error) {
	if evt.Type == "" {
		return "", nil, errors.New("account event without type")
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return "", nil, fmt.Errorf("marshal account event: %w", err)
	}
	return string(evt.Type), body, nil
}

func message(key string, body []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         key,
		MessageId:    uuid.NewString(),
		AppId:        appID,
		Headers:      amqp.Table{"schema_version": schemaVersion},
		Body:         body,
	}
}

func (p *Publisher) publish(ctx context.Context, key string, body []byte) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishWait)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.s.alive() {
		p.s.close()
		s, err := openSession(p.url, p.exchange)
		if err != nil {
			p.s = nil
			return err
		}
		p.s = s
	}
	s := p.s
	drain(s.confirms, s.returns)

	if err := s.ch.PublishWithContext(ctx, p.exchange, key, true, false, message(key, body)); err != nil {
		p.s.close()
		p.s = nil
		return fmt.Errorf("rabbitmq publish %s: %w", key, err)
	}

	err := awaitOutcome(ctx, s.confirms, s.returns, key)
	if errors.Is(err, errChannelClosed) {
		p.s.close()
		p.s = nil
	}
	return err
}

// drain discards confirms and returns left over from an earlier publish
// that gave up waiting.
func drain(confirms <-chan amqp.Confirmation, returns <-chan amqp.Return) {
	for {
		select {
		case <-confirms:
		case <-returns:
		default:
			return
		}
	}
}

// awaitOutcome waits for the broker's verdict on a single publish. A return
// may arrive just after the ack, so an ack is held for returnGrace.
func awaitOutcome(ctx context.Context, confirms <-chan amqp.Confirmation, returns <-chan amqp.Return, key string) error {
	select {
	case ret := <-returns:
		return unroutable(key, ret)

	case conf, ok := <-confirms:
		if !ok {
			return fmt.Errorf("%w: key=%s", errChannelClosed, key)
		}
		select {
		case ret := <-returns:
			return unroutable(key, ret)
		case <-time.After(returnGrace):
		}
		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s tag=%d", key, conf.DeliveryTag)
		}
		return nil

	case <-ctx.Done():
		return fmt.Errorf("rabbitmq publish %s: %w", key, ctx.Err())
	}
}

func unroutable(key string, ret amqp.Return) error {
	return fmt.Errorf("rabbitmq unroutable: key=%s code=%d text=%s", key, ret.ReplyCode, ret.ReplyText)
}
