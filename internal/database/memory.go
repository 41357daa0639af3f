package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jason-s-yu/friendgraph/internal/models"
)

// MemoryStore is an in-process user repository. It backs STORAGE_DRIVER=memory and the tests.
type MemoryStore struct {
	mu      sync.RWMutex
	hasher  PasswordHasher
	users   map[uuid.UUID]*memoryRecord
	order   []uuid.UUID
	nowFunc func() time.Time
}

type memoryRecord struct {
	user    models.User
	friends []uuid.UUID
}

// NewMemoryStore returns an empty store that hashes signup passwords with hasher.
func NewMemoryStore(hasher PasswordHasher) *MemoryStore {
	return &MemoryStore{
		hasher:  hasher,
		users:   make(map[uuid.UUID]*memoryRecord),
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and stores a new user with a hashed password.
func (m *MemoryStore) Create(ctx context.Context, in models.NewUser) (*models.User, error) {
	in, err := normalizeNewUser(in)
	if err != nil {
		return nil, err
	}

	// hash outside the lock; argon2 is deliberately slow
	hash, err := m.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.users {
		if rec.user.Username == in.Username {
			return nil, fmt.Errorf("%w (users_username_key)", ErrDuplicateUser)
		}
		if rec.user.Email == in.Email {
			return nil, fmt.Errorf("%w (users_email_key)", ErrDuplicateUser)
		}
	}

	rec := &memoryRecord{
		user: models.User{
			ID:        uuid.New(),
			Username:  in.Username,
			Email:     in.Email,
			Password:  hash,
			CreatedAt: m.nowFunc(),
		},
	}
	m.users[rec.user.ID] = rec
	m.order = append(m.order, rec.user.ID)
	return m.expand(rec), nil
}

func (m *MemoryStore) FindAll(ctx context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*models.User, 0, len(m.order))
	for _, id := range m.order {
		users = append(users, m.expand(m.users[id]))
	}
	return users, nil
}

func (m *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if rec, ok := m.users[id]; ok {
		return m.expand(rec), nil
	}
	return nil, nil
}

// FindByUsername matches the username the way Create stored it.
func (m *MemoryStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	username = normalizeKey(username)
	return m.findBy(func(u *models.User) bool { return u.Username == username })
}

// FindByEmail matches the email the way Create stored it.
func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeKey(email)
	return m.findBy(func(u *models.User) bool { return u.Email == email })
}

// AddToFriendSet is a set-union under the write lock, so concurrent adds never lose updates.
func (m *MemoryStore) AddToFriendSet(ctx context.Context, userID, friendID uuid.UUID) (*models.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.users[userID]
	if !ok {
		return nil, false, nil
	}
	for _, id := range rec.friends {
		if id == friendID {
			return m.expand(rec), false, nil
		}
	}
	rec.friends = append(rec.friends, friendID)
	return m.expand(rec), true, nil
}

func (m *MemoryStore) findBy(match func(u *models.User) bool) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		rec := m.users[id]
		if match(&rec.user) {
			return m.expand(rec), nil
		}
	}
	return nil, nil
}

// expand copies rec and resolves its friend ids one level deep. Ids with no matching
// user are skipped. Callers must hold m.mu.
func (m *MemoryStore) expand(rec *memoryRecord) *models.User {
	u := rec.user
	u.Friends = make([]*models.User, 0, len(rec.friends))
	for _, id := range rec.friends {
		f, ok := m.users[id]
		if !ok {
			continue
		}
		u.Friends = append(u.Friends, &models.User{
			ID:        f.user.ID,
			Username:  f.user.Username,
			Email:     f.user.Email,
			CreatedAt: f.user.CreatedAt,
		})
	}
	return &u
}
