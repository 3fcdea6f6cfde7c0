package handler

import (
	"context"
	"encoding/json"

	"github.com/ginclub-dev/ginclub/shared/domain"
)

// --- Mocks ---

type MockGate struct {
	SendFunc    func(email string) (domain.SendReceipt, error)
	VerifyFunc  func(code string) (domain.Session, error)
	SessionFunc func() domain.Session
	LogoutFunc  func()
}

func (m *MockGate) Send(email string) (domain.SendReceipt, error) {
	if m.SendFunc != nil {
		return m.SendFunc(email)
	}
	return domain.SendReceipt{Delivered: true}, nil
}

func (m *MockGate) Verify(code string) (domain.Session, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(code)
	}
	return domain.Session{AccessGranted: true, Email: "user@school.edu"}, nil
}

func (m *MockGate) Session() domain.Session {
	if m.SessionFunc != nil {
		return m.SessionFunc()
	}
	return domain.Session{}
}

func (m *MockGate) Logout() {
	if m.LogoutFunc != nil {
		m.LogoutFunc()
	}
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
	return []string{"user@school.edu"}
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

type MockWidgets struct {
	GetFunc         func(name string) (json.RawMessage, error)
	PutFunc         func(name string, doc json.RawMessage) error
	RenderNotesFunc func(markdown string) (string, error)
}

func (m *MockWidgets) Get(name string) (json.RawMessage, error) {
	if m.GetFunc != nil {
		return m.GetFunc(name)
	}
	return json.RawMessage(`{}`), nil
}

func (m *MockWidgets) Put(name string, doc json.RawMessage) error {
	if m.PutFunc != nil {
		return m.PutFunc(name, doc)
	}
	return nil
}

func (m *MockWidgets) RenderNotes(markdown string) (string, error) {
	if m.RenderNotesFunc != nil {
		return m.RenderNotesFunc(markdown)
	}
	return "", nil
}

type MockPinger struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
