package cache

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/recipelens/backend/internal/domain"
)

var _ domain.CacheRepository = (*RedisCache)(nil)

func TestNewRedisCache_InvalidURL(t *testing.T) {
	tests := []string{
		"",
		"http://localhost:6379",
		"redis://localhost:6379/notadb",
	}

	for _, url := range tests {
		t.Run(url, func(t *testing.T) {
			if _, err := NewRedisCache(url, nil); err == nil {
				t.Errorf("expected error for url %q", url)
			}
		})
	}
}

// closedAddr returns an address nothing is listening on
func closedAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot open listener: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func TestRedisCache_Unavailable(t *testing.T) {
	c, err := NewRedisCache("redis://"+closedAddr(t)+"/0", nil)
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Ping() error = %v, want ErrCacheUnavailable", err)
	}

	if _, err := c.Get(ctx, "k"); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Get() error = %v, want ErrCacheUnavailable", err)
	}
	if errors.Is(func() error { _, err := c.Get(ctx, "k"); return err }(), domain.ErrCacheMiss) {
		t.Error("connection failure must not be reported as a cache miss")
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Set() error = %v, want ErrCacheUnavailable", err)
	}
	if err := c.Delete(ctx, "k"); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Delete() error = %v, want ErrCacheUnavailable", err)
	}
	if _, err := c.Exists(ctx, "k"); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Exists() error = %v, want ErrCacheUnavailable", err)
	}
}
