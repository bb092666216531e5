package coordinator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrUnknownChannel is returned by Issue for a channel it does not know.
var ErrUnknownChannel = errors.New("unknown channel")

// Transport performs one upstream call and returns the raw body.
type Transport interface {
	Send(ctx context.Context, ch Channel, params url.Values) ([]byte, error)
}

// DomainError is a response whose body was a sentinel or, on a persistence
// channel, anything but SuccessMarker.
type DomainError struct {
	Channel  Channel
	Sentinel string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: upstream answered %q", e.Channel, e.Sentinel)
}

// Handlers receive the outcome of a request. Exactly one is invoked for a
// request that completes while still current; none for a superseded one.
type Handlers struct {
	OnSuccess        func(body []byte)
	OnDomainError    func(err *DomainError)
	OnTransportError func(err error)
}

// Executor runs a completion on the owner's serialized context.
type Executor func(fn func()) bool

type request struct {
	id      uint64
	channel Channel
	cancel  context.CancelFunc
}

// Coordinator owns the in-flight request of each channel. Issuing on a
// channel aborts whatever was pending there.
type Coordinator struct {
	transport Transport
	post      Executor
	log       *zap.Logger

	mu       sync.Mutex
	seq      uint64
	pending  map[Channel]*request
	inflight atomic.Int64
}

// New creates a coordinator. Completions are delivered through post.
func New(transport Transport, post Executor, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		transport: transport,
		post:      post,
		log:       log,
		pending:   make(map[Channel]*request),
	}
}

// Issue cancels the pending request on ch, if any, and starts a new one.
// It returns the id of the new request.
func (c *Coordinator) Issue(ctx context.Context, ch Channel, params url.Values, h Handlers) (uint64, error) {
	rule, ok := channelRules[ch]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownChannel, ch)
	}

	reqCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if prev := c.pending[ch]; prev != nil {
		prev.cancel()
		c.log.Debug("request superseded", zap.String("channel", string(ch)), zap.Uint64("id", prev.id))
	}
	c.seq++
	r := &request{id: c.seq, channel: ch, cancel: cancel}
	c.pending[ch] = r
	c.inflight.Add(1)
	c.mu.Unlock()

	go c.run(reqCtx, r, rule, cloneValues(params), h)
	return r.id, nil
}

func (c *Coordinator) run(ctx context.Context, r *request, rule channelRule, params url.Values, h Handlers) {
	defer c.inflight.Add(-1)

	body, err := c.transport.Send(ctx, r.channel, params)
	if !c.post(func() { c.complete(r, rule, body, err, h) }) {
		r.cancel()
		c.log.Debug("completion dropped, owner closed", zap.String("channel", string(r.channel)))
	}
}

func (c *Coordinator) complete(r *request, rule channelRule, body []byte, err error, h Handlers) {
	c.mu.Lock()
	current := c.pending[r.channel] == r
	if current {
		delete(c.pending, r.channel)
	}
	c.mu.Unlock()
	r.cancel()

	if !current {
		c.log.Debug("discarding stale response", zap.String("channel", string(r.channel)), zap.Uint64("id", r.id))
		return
	}

	if err != nil {
		c.log.Debug("request failed", zap.String("channel", string(r.channel)), zap.Error(err))
		if h.OnTransportError != nil {
			h.OnTransportError(err)
		}
		return
	}

	if derr := classify(r.channel, rule, body); derr != nil {
		c.log.Debug("upstream rejected request", zap.String("channel", string(r.channel)), zap.String("sentinel", derr.Sentinel))
		if h.OnDomainError != nil {
			h.OnDomainError(derr)
		}
		return
	}

	if h.OnSuccess != nil {
		h.OnSuccess(body)
	}
}

func classify(ch Channel, rule channelRule, body []byte) *DomainError {
	text := strings.TrimSpace(string(body))
	if rule.sentinels[text] {
		return &DomainError{Channel: ch, Sentinel: text}
	}
	if rule.expectOK && text != SuccessMarker {
		return &DomainError{Channel: ch, Sentinel: text}
	}
	return nil
}

// Cancel aborts the pending request on ch. Its handlers are never invoked.
func (c *Coordinator) Cancel(ch Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r := c.pending[ch]; r != nil {
		r.cancel()
		delete(c.pending, ch)
	}
}

// CancelAll aborts every pending request.
func (c *Coordinator) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch, r := range c.pending {
		r.cancel()
		delete(c.pending, ch)
	}
}

// Pending reports whether ch has a live request.
func (c *Coordinator) Pending(ch Channel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[ch] != nil
}

// InFlight returns the number of transport calls whose completion has not
// yet been handed to the executor, stale ones included.
func (c *Coordinator) InFlight() int {
	return int(c.inflight.Load())
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
