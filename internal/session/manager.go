package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dropDatabas3/habo/internal/domain/repository"
	"github.com/dropDatabas3/habo/internal/observability/logger"
	tokens "github.com/dropDatabas3/habo/internal/security/token"
)

const (
	DefaultCookieName    = "atm-session"
	DefaultTTL           = 24 * time.Hour
	DefaultTouchInterval = time.Minute
	DefaultSweepInterval = 15 * time.Minute

	keyPrefix  = "sess:"
	signerInfo = "habo session cookie v1"
)

// Config del manager.
type Config struct {
	Cookie CookieConfig
	Secret string

	// TouchInterval es cada cuánto un request de una sesión existente
	// renueva su TTL en el store y reenvía la cookie.
	TouchInterval time.Duration
	SweepInterval time.Duration
}

// Manager carga, guarda y destruye sesiones.
type Manager struct {
	store  repository.SessionRepository
	signer *tokens.Signer
	cfg    Config
	now    func() time.Time
}

// Option personaliza el Manager.
type Option func(*Manager)

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store repository.SessionRepository, cfg Config, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session: nil store")
	}
	if cfg.Cookie.Name == "" {
		cfg.Cookie.Name = DefaultCookieName
	}
	if cfg.Cookie.TTL <= 0 {
		cfg.Cookie.TTL = DefaultTTL
	}
	if cfg.TouchInterval <= 0 {
		cfg.TouchInterval = DefaultTouchInterval
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	signer, err := tokens.NewSigner([]byte(cfg.Secret), signerInfo)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	m := &Manager{store: store, signer: signer, cfg: cfg, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// CookieName retorna el nombre de la cookie de sesión.
func (m *Manager) CookieName() string { return m.cfg.Cookie.Name }

func storeKey(id string) string { return keyPrefix + tokens.SHA256Base64URL(id) }

// Load lee la cookie y trae el record. Cookie ausente, alterada o vencida
// resulta en una sesión nueva vacía; solo errores del store se retornan.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	ck, err := r.Cookie(m.cfg.Cookie.Name)
	if err != nil || ck.Value == "" {
		return newSession(), nil
	}
	id, err := m.signer.Verify(ck.Value)
	if err != nil {
		logger.From(r.Context()).Debug("session cookie rejected", logger.Component("session"), logger.Err(err))
		return newSession(), nil
	}

	rec, err := m.store.Get(r.Context(), storeKey(id))
	if repository.IsNotFound(err) {
		return newSession(), nil
	}
	if err != nil {
		return newSession(), fmt.Errorf("session: load: %w", err)
	}
	return &Session{id: id, rec: rec, persisted: true}, nil
}

// Save persiste la sesión (creando el id si hace falta) y setea la cookie.
// Debe llamarse antes de escribir el body.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	now := m.now().UTC()
	if s.id == "" {
		id, err := tokens.GenerateOpaqueToken(tokens.DefaultBytes)
		if err != nil {
			return fmt.Errorf("session: new id: %w", err)
		}
		s.id = id
	}
	if s.rec.CreatedAt.IsZero() {
		s.rec.CreatedAt = now
	}
	s.rec.UpdatedAt = now

	if err := m.store.Set(ctx, storeKey(s.id), s.rec, m.cfg.Cookie.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	s.persisted = true
	http.SetCookie(w, m.cfg.Cookie.BuildCookie(m.signer.Sign(s.id), now))
	return nil
}

// Destroy borra el record y expira la cookie. La sesión queda vacía.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	var err error
	if s.id != "" {
		err = m.store.Delete(ctx, storeKey(s.id))
	}
	http.SetCookie(w, m.cfg.Cookie.BuildDeletionCookie())
	*s = *newSession()
	if err != nil {
		return fmt.Errorf("session: destroy: %w", err)
	}
	return nil
}

// Middleware carga la sesión en el contexto y desliza la expiración de las
// sesiones existentes.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.From(ctx).With(logger.Component("session"))

		s, err := m.Load(r)
		if err != nil {
			log.Warn("session store unavailable, continuing without session", logger.Err(err))
		}
		if s.persisted && m.now().Sub(s.rec.UpdatedAt) >= m.cfg.TouchInterval {
			if err := m.Save(ctx, w, s); err != nil {
				log.Warn("session touch failed", logger.Err(err))
			}
		}
		next.ServeHTTP(w, r.WithContext(WithContext(ctx, s)))
	})
}

// StartSweeper barre sesiones vencidas si el store lo necesita (SQL).
// Retorna sin hacer nada para stores que expiran solos.
func (m *Manager) StartSweeper(ctx context.Context) {
	sw, ok := m.store.(repository.SessionSweeper)
	if !ok {
		return
	}
	go func() {
		log := logger.From(ctx).With(logger.Component("session"), logger.Op("sweep"))
		t := time.NewTicker(m.cfg.SweepInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				n, err := sw.DeleteExpired(ctx)
				if err != nil {
					log.Warn("session sweep failed", logger.Err(err))
					continue
				}
				if n > 0 {
					log.Debug("expired sessions removed", logger.Count(n))
				}
			}
		}
	}()
}
