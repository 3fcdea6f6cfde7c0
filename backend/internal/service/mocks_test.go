package service

import (
	"context"
	"net/http"
	"sync"

	internal_errors "github.com/ginclub-dev/ginclub/shared/errors"
)

// --- Mocks ---

// MockKeyValue is map-backed by default; individual Func fields override
// single operations.
type MockKeyValue struct {
	GetFunc    func(key string) (string, error)
	SetFunc    func(key, value string) error
	DeleteFunc func(key string) error
	PingFunc   func(ctx context.Context) error

	mu   sync.Mutex
	data map[string]string
}

func (m *MockKeyValue) Get(key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", internal_errors.NotFound("Key not found")
	}
	return v, nil
}

func (m *MockKeyValue) Set(key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = value
	return nil
}

func (m *MockKeyValue) Delete(key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockKeyValue) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *MockKeyValue) stored(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

type sentMessage struct {
	TemplateID string
	Payload    map[string]string
}

type MockDelivery struct {
	SendFunc func(templateID string, payload map[string]string) error

	mu   sync.Mutex
	sent []sentMessage
}

func (m *MockDelivery) Send(templateID string, payload map[string]string) error {
	m.mu.Lock()
	m.sent = append(m.sent, sentMessage{templateID, payload})
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(templateID, payload)
	}
	return nil
}

func (m *MockDelivery) sentMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

type MockAllowlist struct {
	GetFunc       func() []string
	ReplaceFunc   func(list []string)
	AddFunc       func(email string)
	RemoveFunc    func(email string)
	ResetFunc     func()
	IsAllowedFunc func(email string) bool
}

func (m *MockAllowlist) Get() []string {
	if m.GetFunc != nil {
		return m.GetFunc()
	}
	return nil
}

func (m *MockAllowlist) Replace(list []string) {
	if m.ReplaceFunc != nil {
		m.ReplaceFunc(list)
	}
}

func (m *MockAllowlist) Add(email string) {
	if m.AddFunc != nil {
		m.AddFunc(email)
	}
}

func (m *MockAllowlist) Remove(email string) {
	if m.RemoveFunc != nil {
		m.RemoveFunc(email)
	}
}

func (m *MockAllowlist) Reset() {
	if m.ResetFunc != nil {
		m.ResetFunc()
	}
}

func (m *MockAllowlist) IsAllowed(email string) bool {
	if m.IsAllowedFunc != nil {
		return m.IsAllowedFunc(email)
	}
	return true
}

func assertStatusCode(err error) int {
	if statusErr, ok := err.(*internal_errors.ErrorWithStatusCode); ok {
		return statusErr.StatusCode
	}
	return http.StatusInternalServerError
}
