package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dropDatabas3/habo/internal/domain/repository"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore guarda records serializados en go-cache. Serializar evita
// que dos requests compartan el mismo *SessionRecord.
type MemoryStore struct {
	c *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: gocache.New(DefaultTTL, time.Minute)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*repository.SessionRecord, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, repository.ErrNotFound
	}
	b, _ := v.([]byte)
	var rec repository.SessionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, rec *repository.SessionRecord, ttl time.Duration) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.c.Set(key, b, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

// Len retorna la cantidad de sesiones en memoria.
func (s *MemoryStore) Len() int { return s.c.ItemCount() }

func (s *MemoryStore) Close() error {
	s.c.Flush()
	return nil
}
