package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ginclub-dev/ginclub/shared/config"
	"github.com/ginclub-dev/ginclub/shared/domain"
	"github.com/ginclub-dev/ginclub/shared/errors"
	"github.com/ginclub-dev/ginclub/shared/logger"
	"github.com/ginclub-dev/ginclub/shared/utils"
)

// Delivery sends a rendered message template. Implementations resolve the
// recipient and wording from the payload.
type Delivery interface {
	Send(templateID string, payload map[string]string) error
}

// Template ids the gate hands to the delivery channel.
const (
	TemplateLoginCode  = "login_code"
	TemplateBackupCopy = "backup_copy"
)

type GateService interface {
	Send(email string) (domain.SendReceipt, error)
	Verify(code string) (domain.Session, error)
	Session() domain.Session
	Logout()
}

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Gate owns the one-time-code login flow: at most one pending code at a time,
// a resend cooldown, and the persisted session marker. In-memory state is
// authoritative and seeded from storage at construction; persistence is
// write-through and best effort.
type Gate struct {
	storage   KeyValue
	allowlist AllowlistService
	delivery  Delivery
	cfg       *config.Gate

	mu       sync.Mutex
	pending  *domain.PendingCode
	lastSend time.Time
	session  domain.Session

	now func() time.Time
}

func NewGate(storage KeyValue, allowlist AllowlistService, delivery Delivery, cfg *config.Gate) *Gate {
	g := &Gate{
		storage:   storage,
		allowlist: allowlist,
		delivery:  delivery,
		cfg:       cfg,
		now:       time.Now,
	}
	g.restore()
	return g
}

// restore seeds in-memory state from storage. Unreadable or malformed values
// degrade to zero state instead of failing construction.
func (g *Gate) restore() {
	if raw, err := g.storage.Get(keyPendingCode); err == nil {
		var p domain.PendingCode
		if err := json.Unmarshal([]byte(raw), &p); err == nil && p.Code != "" {
			g.pending = &p
		}
	}
	if raw, err := g.storage.Get(keyCodeLast); err == nil {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && ms > 0 {
			g.lastSend = time.UnixMilli(ms)
		}
	}
	if marker, err := g.storage.Get(keyAccess); err == nil && marker == accessMarker {
		email, _ := g.storage.Get(keyEmail)
		g.session = domain.Session{AccessGranted: true, Email: email}
	}
}

func (g *Gate) persist(key, value string) {
	if err := g.storage.Set(key, value); err != nil {
		logger.Log.Warn("gate state write failed", "key", key, "error", err)
	}
}

func (g *Gate) unpersist(key string) {
	if err := g.storage.Delete(key); err != nil {
		logger.Log.Warn("gate state delete failed", "key", key, "error", err)
	}
}

// Send issues a fresh one-time code for email and hands it to the delivery
// channel. The pending code and cooldown stamp are written before any
// delivery attempt, so a failed send still leaves a verifiable code. A
// throttled request never touches the previous pending code.
func (g *Gate) Send(email string) (domain.SendReceipt, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !emailShape.MatchString(email) {
		return domain.SendReceipt{}, &errors.ErrorWithStatusCode{Message: "Enter a valid email", StatusCode: http.StatusBadRequest}
	}
	if !g.allowlist.IsAllowed(email) {
		return domain.SendReceipt{}, &errors.ErrorWithStatusCode{Message: "Email not allowed", StatusCode: http.StatusForbidden}
	}

	g.mu.Lock()
	now := g.now()
	if now.Sub(g.lastSend) < g.cfg.ResendDelay() {
		g.mu.Unlock()
		return domain.SendReceipt{}, &errors.ErrorWithStatusCode{Message: "Please wait before resending", StatusCode: http.StatusTooEarly}
	}

	pending := domain.PendingCode{
		Code:  utils.GenerateLoginCode(),
		Email: email,
		Exp:   now.Add(g.cfg.CodeTTL()).UnixMilli(),
	}
	g.pending = &pending
	g.lastSend = now
	if raw, err := json.Marshal(pending); err == nil {
		g.persist(keyPendingCode, string(raw))
	}
	g.persist(keyCodeLast, strconv.FormatInt(now.UnixMilli(), 10))
	g.mu.Unlock()

	receipt := domain.SendReceipt{ExpiresAt: pending.ExpiresAt()}
	if g.deliver(pending) {
		receipt.Delivered = true
		return receipt, nil
	}
	if g.cfg.DisableFallbackCode {
		return domain.SendReceipt{}, &errors.ErrorWithStatusCode{Message: "Could not send email. Please contact an admin", StatusCode: http.StatusBadGateway}
	}
	receipt.FallbackCode = pending.Code
	return receipt, nil
}

// deliver sends the user-facing message and, detached, a backup copy to the
// admin address. Only the user-facing outcome counts.
func (g *Gate) deliver(pending domain.PendingCode) bool {
	if g.delivery == nil {
		return false
	}

	expiryText := formatExpiry(g.cfg.CodeTTL())
	localPart, _, _ := strings.Cut(pending.Email, "@")

	if g.cfg.BackupRecipient != "" {
		backup := map[string]string{
			"to_email":     g.cfg.BackupRecipient,
			"to_name":      "Admin",
			"requested_by": pending.Email,
			"code":         pending.Code,
			"code_expiry":  expiryText,
		}
		go func() {
			if err := g.delivery.Send(TemplateBackupCopy, backup); err != nil {
				logger.Log.Warn("backup code copy failed", "error", err)
			}
		}()
	}

	payload := map[string]string{
		"to_email":    pending.Email,
		"to_name":     localPart,
		"code":        pending.Code,
		"code_expiry": expiryText,
	}
	if err := g.delivery.Send(TemplateLoginCode, payload); err != nil {
		logger.Log.Error("login code delivery failed", "email", pending.Email, "error", err)
		return false
	}
	return true
}

func formatExpiry(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	return d.String()
}

// Verify compares the submitted code with the pending one. An expired code is
// not deleted, it just keeps comparing as expired until a new send overwrites
// it. The pending code also survives a successful match, so re-submitting it
// re-confirms the session.
func (g *Gate) Verify(code string) (domain.Session, error) {
	entered := strings.TrimSpace(code)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return domain.Session{}, &errors.ErrorWithStatusCode{Message: "No code requested yet", StatusCode: http.StatusBadRequest}
	}
	if g.now().After(g.pending.ExpiresAt()) {
		return domain.Session{}, &errors.ErrorWithStatusCode{Message: "Code expired", StatusCode: http.StatusBadRequest}
	}
	if entered != g.pending.Code {
		return domain.Session{}, &errors.ErrorWithStatusCode{Message: "Incorrect code", StatusCode: http.StatusBadRequest}
	}

	g.session = domain.Session{AccessGranted: true, Email: g.pending.Email}
	g.persist(keyAccess, accessMarker)
	g.persist(keyEmail, g.session.Email)
	return g.session, nil
}

func (g *Gate) Session() domain.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// Logout drops the session marker. The pending code is left alone.
func (g *Gate) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = domain.Session{}
	g.unpersist(keyAccess)
	g.unpersist(keyEmail)
}
