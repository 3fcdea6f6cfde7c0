package memory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/ginclub-dev/ginclub/backend/internal/service"
	internal_errors "github.com/ginclub-dev/ginclub/shared/errors"
)

// Storage is an in-process store for tests and ephemeral deployments.
type Storage struct {
	c *cache.Cache
}

var _ service.KeyValue = (*Storage)(nil)

func New() *Storage {
	return &Storage{c: cache.New(cache.NoExpiration, 0)}
}

func (s *Storage) Get(key string) (string, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return "", internal_errors.NotFound("Key not found")
	}
	return v.(string), nil
}

func (s *Storage) Set(key, value string) error {
	s.c.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *Storage) Delete(key string) error {
	s.c.Delete(key)
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}
