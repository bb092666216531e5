package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"delivery-options-backend/config"
	"delivery-options-backend/internal/coordinator"
	"delivery-options-backend/internal/model"
)

// Registry keeps live sessions for a sliding TTL. Expired or removed
// sessions are closed.
type Registry struct {
	cfg       *config.Config
	transport coordinator.Transport
	recorder  Recorder
	log       *zap.Logger
	sessions  *cache.Cache
	ttl       time.Duration
}

// NewRegistry creates a registry that builds sessions against transport.
func NewRegistry(cfg *config.Config, transport coordinator.Transport, recorder Recorder, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	ttl := cfg.Server.SessionTTL
	r := &Registry{
		cfg:       cfg,
		transport: transport,
		recorder:  recorder,
		log:       log,
		sessions:  cache.New(ttl, ttl/2),
		ttl:       ttl,
	}
	r.sessions.OnEvicted(func(id string, v interface{}) {
		if s, ok := v.(*Session); ok {
			s.Close()
			r.log.Debug("session evicted", zap.String("session", id))
		}
	})
	return r
}

// Create opens and starts a session for addr.
func (r *Registry) Create(addr model.Address) (*Session, error) {
	id := uuid.NewString()
	s, err := New(id, addr, r.cfg, r.transport, r.recorder, r.log)
	if err != nil {
		return nil, err
	}
	if err := s.Start(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	r.sessions.Set(id, s, cache.DefaultExpiration)
	r.log.Info("session created", zap.String("session", id), zap.String("postcode", addr.Postcode))
	return s, nil
}

// Get returns the session with the given id and extends its lifetime.
func (r *Registry) Get(id string) (*Session, error) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s := v.(*Session)
	r.sessions.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

// Remove closes and forgets a session.
func (r *Registry) Remove(id string) error {
	if _, ok := r.sessions.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.sessions.Delete(id)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}

// Close closes every live session.
func (r *Registry) Close() {
	for id := range r.sessions.Items() {
		r.sessions.Delete(id)
	}
}
