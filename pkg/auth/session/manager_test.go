package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/trendora/trendora-backend/pkg/redis"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redisclient.ErrNotFound
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) SessionKey(sessionID string) string {
	return "sess:" + sessionID
}

func TestManagerRegisterAndRevoke(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}
	ctx := context.Background()

	jti := uuid.NewString()
	userID := uuid.New()

	if err := manager.Register(ctx, jti, userID); err != nil {
		t.Fatalf("register: %v", err)
	}

	active, err := manager.HasSession(ctx, jti)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !active {
		t.Fatal("expected session to be active after register")
	}
	if stored := store.data[store.SessionKey(jti)]; stored != userID.String() {
		t.Fatalf("expected user id stored, got %q", stored)
	}

	if err := manager.Revoke(ctx, jti); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	active, err = manager.HasSession(ctx, jti)
	if err != nil {
		t.Fatalf("has session after revoke: %v", err)
	}
	if active {
		t.Fatal("expected session gone after revoke")
	}

	// revoking twice is a no-op
	if err := manager.Revoke(ctx, jti); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}

func TestManagerRequiresJTI(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, ttl: time.Hour}
	ctx := context.Background()

	if err := manager.Register(ctx, " ", uuid.New()); err == nil {
		t.Fatal("expected error for blank jti")
	}
	if _, err := manager.HasSession(ctx, ""); err == nil {
		t.Fatal("expected error for blank jti")
	}
}

func TestNewGuestToken(t *testing.T) {
	first, err := NewGuestToken()
	if err != nil {
		t.Fatalf("new guest token: %v", err)
	}
	second, err := NewGuestToken()
	if err != nil {
		t.Fatalf("new guest token: %v", err)
	}
	if first == "" || first == second {
		t.Fatalf("tokens must be unique and non-empty: %q %q", first, second)
	}
}
