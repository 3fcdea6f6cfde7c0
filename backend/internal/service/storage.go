package service

import "context"

// Keys of the persisted gate state.
const (
	keyAllowlist   = "allowlist"
	keyPendingCode = "pending_code"
	keyCodeLast    = "code_last"
	keyAccess      = "access"
	keyEmail       = "email"

	accessMarker = "ok"
)

// KeyValue is the persistent store behind the gate and the widgets.
// Get returns a 404 ErrorWithStatusCode for missing keys. Single-key writes
// are atomic; nothing here needs multi-key transactions, conflicting writers
// resolve by last write wins.
type KeyValue interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Ping(ctx context.Context) error
}
