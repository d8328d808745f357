package statecache

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/habo/internal/domain/repository"
	"github.com/dropDatabas3/habo/internal/observability/logger"
	gocache "github.com/patrickmn/go-cache"
)

// Memory es el backend in-process sobre go-cache. Las operaciones por key
// son atómicas (go-cache serializa con su RWMutex), así que el sweeper no
// pisa un Get/Delete en vuelo.
type Memory struct {
	c        *gocache.Cache
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	done    chan struct{}
}

// MemoryOption personaliza el backend memory.
type MemoryOption func(*Memory)

// WithClock reemplaza time.Now para CreatedAt y expiración.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory crea el backend. El janitor de go-cache queda deshabilitado;
// el barrido lo hace Start con su propio ticker.
func NewMemory(ttl, sweepInterval time.Duration, opts ...MemoryOption) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	m := &Memory{
		c:        gocache.New(ttl, 0),
		ttl:      ttl,
		interval: sweepInterval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start arranca el sweeper. Se detiene con Close o al cancelar ctx.
// Llamadas repetidas no hacen nada.
func (m *Memory) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true

	go func() {
		defer close(m.done)
		t := time.NewTicker(m.interval)
		defer t.Stop()
		log := logger.From(ctx).With(logger.Component("statecache"))
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-t.C:
				n := m.Sweep()
				log.Debug("state cache sweep", logger.Count(n), logger.Int("size", m.Len()))
			}
		}
	}()
}

func (m *Memory) Put(_ context.Context, state, nonce string) error {
	if err := validState(state); err != nil {
		return err
	}
	m.c.Set(state, repository.AuthorizationRequest{
		State:     state,
		Nonce:     nonce,
		CreatedAt: m.now(),
	}, m.ttl)
	return nil
}

func (m *Memory) Get(_ context.Context, state string) (repository.AuthorizationRequest, error) {
	v, ok := m.c.Get(state)
	if !ok {
		// go-cache no retorna items vencidos pero los deja hasta DeleteExpired
		m.c.Delete(state)
		return repository.AuthorizationRequest{}, ErrNotFound
	}
	req, ok := v.(repository.AuthorizationRequest)
	if !ok || m.expired(req) {
		m.c.Delete(state)
		return repository.AuthorizationRequest{}, ErrNotFound
	}
	return req, nil
}

func (m *Memory) Delete(_ context.Context, state string) error {
	m.c.Delete(state)
	return nil
}

// Sweep elimina las entradas vencidas y retorna cuántas borró.
func (m *Memory) Sweep() int {
	before := m.c.ItemCount()
	m.c.DeleteExpired()
	for k, it := range m.c.Items() {
		if req, ok := it.Object.(repository.AuthorizationRequest); ok && m.expired(req) {
			m.c.Delete(k)
		}
	}
	if n := before - m.c.ItemCount(); n > 0 {
		return n
	}
	return 0
}

// Len retorna la cantidad de entradas (incluye vencidas aún no barridas).
func (m *Memory) Len() int { return m.c.ItemCount() }

// Close detiene el sweeper y espera a que termine.
func (m *Memory) Close() error {
	m.mu.Lock()
	started := m.started
	select {
	case <-m.stop:
	default:
		close(m.stop)
	}
	m.mu.Unlock()
	if started {
		<-m.done
	}
	return nil
}

func (m *Memory) expired(req repository.AuthorizationRequest) bool {
	return m.now().Sub(req.CreatedAt) >= m.ttl
}
