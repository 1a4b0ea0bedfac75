package directory

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memUser struct {
	id       string
	email    string
	password string
	token    string
}

// Memory 是纯内存的 UserDirectory 实现，供测试与无数据库环境使用。
// 密码按原样比较，不做哈希。
type Memory struct {
	mu    sync.RWMutex
	users map[string]*memUser
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]*memUser)}
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &User{ID: u.id, Email: u.email, Token: u.token}, nil
}

func (m *Memory) FindByToken(_ context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.token == token {
			return &User{ID: u.id, Email: u.email, Token: u.token}, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) Create(_ context.Context, email, password string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; ok {
		return nil, ErrEmailTaken
	}
	u := &memUser{id: uuid.NewString(), email: email, password: password}
	m.users[email] = u
	return &User{ID: u.id, Email: u.email}, nil
}

func (m *Memory) SetToken(_ context.Context, email, password, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok || u.password != password {
		return ErrBadCredentials
	}
	u.token = token
	return nil
}
