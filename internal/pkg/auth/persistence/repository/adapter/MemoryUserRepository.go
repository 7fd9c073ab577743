package adapter

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	auth "go-inbox/internal/pkg/auth/application/domain"
	repository "go-inbox/internal/pkg/auth/persistence/repository/port"
)

// MemoryUserRepository keeps users in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	byID  map[string]auth.User
	email map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byID: make(map[string]auth.User), email: make(map[string]string)}
}

var _ repository.UserRepository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) Create(_ context.Context, u auth.User) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.email[u.Email]; taken {
		return auth.User{}, auth.ErrUserExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.byID[u.ID] = u
	r.email[u.Email] = u.ID
	return u, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	r.mu.RLock()
	id, ok := r.email[email]
	r.mu.RUnlock()
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *MemoryUserRepository) FindByConfirmationToken(_ context.Context, token string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.ConfirmationToken != nil && *u.ConfirmationToken == token {
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (r *MemoryUserRepository) Confirm(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.ConfirmedAt = &at
	u.ConfirmationToken = nil
	r.byID[id] = u
	return nil
}
