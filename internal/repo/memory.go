package repo

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrUserExists = errors.New("user already exists")

// MemoryRepository keeps users and designs in process memory. It backs the
// server when no database is configured and is used by handler tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	users   map[string]memoryUser
	designs map[uuid.UUID]Design
	now     func() time.Time
}

type memoryUser struct {
	id            int
	email, passwd string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:   make(map[string]memoryUser),
		designs: make(map[uuid.UUID]Design),
		now:     time.Now,
	}
}

func (m *MemoryRepository) CreateUser(_ context.Context, login, email, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[login]; ok {
		return 0, ErrUserExists
	}
	id := len(m.users) + 1
	m.users[login] = memoryUser{id: id, email: email, passwd: password}
	return id, nil
}

func (m *MemoryRepository) GetBylogin(_ context.Context, login string) (int, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u := m.users[login]
	return u.id, u.passwd, nil
}

func (m *MemoryRepository) SaveDesign(_ context.Context, d Design) (Design, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = m.now()
	m.designs[d.ID] = d
	return d, nil
}

func (m *MemoryRepository) ListDesigns(_ context.Context, userID int) ([]DesignSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []DesignSummary{}
	for _, d := range m.designs {
		if d.UserID == userID {
			out = append(out, d.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) GetDesign(_ context.Context, userID int, id uuid.UUID) (Design, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.designs[id]
	if !ok || d.UserID != userID {
		return Design{}, ErrNotFound
	}
	return d, nil
}
