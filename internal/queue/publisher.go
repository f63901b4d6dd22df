package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// defaultDialTimeout bounds the TCP connect and AMQP handshake when the
// caller's context carries no deadline.
const defaultDialTimeout = 5 * time.Second

// Publisher sends ActivityRecordedEvent messages to a durable queue.  The
// connection is opened lazily and reopened after the broker drops it.
// Messages are marked as persistent.  Every call, including one waiting
// behind another caller's dial, returns by its context's deadline.
type Publisher struct {
    url   string
    queue string

    sem  chan struct{} // one-slot lock guarding conn and ch
    conn *amqp.Connection
    ch   *amqp.Channel
}

// NewPublisher returns a Publisher for queue on the broker at url.  No
// connection is made until the first publish.
func NewPublisher(url, queue string) *Publisher {
    return &Publisher{url: url, queue: queue, sem: make(chan struct{}, 1)}
}

func (p *Publisher) lock(ctx context.Context) error {
    select {
    case p.sem <- struct{}{}:
        return nil
    case <-ctx.Done():
        return ctx.Err()
    }
}

func (p *Publisher) unlock() { <-p.sem }

// PublishActivity publishes ev.  Callers treat failures as non-fatal.
func (p *Publisher) PublishActivity(ctx context.Context, ev ActivityRecordedEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    if err := ctx.Err(); err != nil {
        return fmt.Errorf("publish skipped: %w", err)
    }
    if err := p.lock(ctx); err != nil {
        return fmt.Errorf("publisher busy: %w", err)
    }
    defer p.unlock()

    ch, err := p.channel(ctx)
    if err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",      // default exchange
        p.queue, // routing key = queue name
        false,   // mandatory
        false,   // immediate
        pub,
    ); err != nil {
        p.reset()
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}

// Close shuts the channel and connection down.
func (p *Publisher) Close() error {
    p.sem <- struct{}{}
    defer p.unlock()
    if p.conn == nil {
        return nil
    }
    err := p.conn.Close()
    p.conn, p.ch = nil, nil
    return err
}

// channel returns an open channel, dialing when needed.  The dial and
// handshake are bounded by ctx's deadline.  p.sem must be held.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    p.reset()

    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(dialTimeout(ctx)),
    })
    if err != nil {
        return nil, fmt.Errorf("dial broker: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("channel open: %w", err)
    }
    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("queue declare: %w", err)
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *Publisher) reset() {
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.conn, p.ch = nil, nil
}

func dialTimeout(ctx context.Context) time.Duration {
    dl, ok := ctx.Deadline()
    if !ok {
        return defaultDialTimeout
    }
    d := time.Until(dl)
    if d <= 0 {
        return time.Millisecond
    }
    return d
}
