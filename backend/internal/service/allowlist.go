package service

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/ginclub-dev/ginclub/shared/config"
	"github.com/ginclub-dev/ginclub/shared/errors"
	"github.com/ginclub-dev/ginclub/shared/logger"
)

type AllowlistService interface {
	Get() []string
	Replace(list []string)
	Add(email string)
	Remove(email string)
	Reset()
	IsAllowed(email string) bool
}

// Allowlist is the set of emails permitted to request a login code, plus the
// static set of allowed domains from config. The in-memory set is
// authoritative; persistence is write-through and best effort, so a broken
// store degrades the gate instead of breaking it.
type Allowlist struct {
	storage  KeyValue
	defaults []string
	domains  []string

	mu      sync.RWMutex
	entries map[string]struct{}
}

func NewAllowlist(storage KeyValue, cfg *config.Gate) *Allowlist {
	a := &Allowlist{
		storage:  storage,
		defaults: normalizeList(cfg.DefaultAllowlist),
		domains:  normalizeList(cfg.AllowedDomains),
	}
	a.entries = a.load()
	return a
}

// load reads the persisted list, falling open to the configured defaults when
// it is missing or malformed.
func (a *Allowlist) load() map[string]struct{} {
	raw, err := a.storage.Get(keyAllowlist)
	if err != nil {
		if !errors.IsNotFound(err) {
			logger.Log.Warn("allowlist read failed, using defaults", "error", err)
		}
		return toSet(a.defaults)
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		logger.Log.Warn("persisted allowlist is malformed, using defaults", "error", err)
		return toSet(a.defaults)
	}
	return toSet(list)
}

func normalizeList(list []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func toSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, v := range normalizeList(list) {
		set[v] = struct{}{}
	}
	return set
}

// Get returns the normalized entries, sorted for stable output.
func (a *Allowlist) Get() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]string, 0, len(a.entries))
	for v := range a.entries {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Replace swaps the whole list.
func (a *Allowlist) Replace(list []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = toSet(list)
	a.persistLocked()
}

func (a *Allowlist) Add(email string) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[email] = struct{}{}
	a.persistLocked()
}

func (a *Allowlist) Remove(email string) {
	email = strings.ToLower(strings.TrimSpace(email))
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, email)
	a.persistLocked()
}

// Reset restores the configured default list.
func (a *Allowlist) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = toSet(a.defaults)
	a.persistLocked()
}

// IsAllowed reports whether email matches an entry exactly or one of the
// allowed domains by suffix. Case-insensitive, no wildcards.
func (a *Allowlist) IsAllowed(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))

	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, ok := a.entries[email]; ok {
		return true
	}
	for _, d := range a.domains {
		if strings.HasSuffix(email, "@"+d) {
			return true
		}
	}
	return false
}

func (a *Allowlist) persistLocked() {
	list := make([]string, 0, len(a.entries))
	for v := range a.entries {
		list = append(list, v)
	}
	sort.Strings(list)

	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := a.storage.Set(keyAllowlist, string(raw)); err != nil {
		logger.Log.Warn("allowlist write failed, in-memory value still applies", "error", err)
	}
}
