package domain

import "time"

// PendingCode is the single outstanding one-time login code. A new send
// overwrites it; verification only reads it. Exp is epoch milliseconds.
type PendingCode struct {
	Code  string `json:"code"`
	Email string `json:"email"`
	Exp   int64  `json:"exp"`
}

func (p PendingCode) ExpiresAt() time.Time {
	return time.UnixMilli(p.Exp)
}

// Session is the marker of a successful verification.
type Session struct {
	AccessGranted bool   `json:"access_granted"`
	Email         string `json:"email"`
}

// SendReceipt reports the outcome of issuing a code. FallbackCode is set only
// when delivery could not be confirmed and fallback disclosure is enabled.
type SendReceipt struct {
	Delivered    bool
	FallbackCode string
	ExpiresAt    time.Time
}

// Member is the identity carried by an access token.
type Member struct {
	Email string
	Admin bool
}
