package domain

import "time"

type CodeType string

const (
	CodeTypeVerification  CodeType = "VERIFICATION"
	CodeTypeResetPassword CodeType = "RESETPASSWORD"
	CodeTypeReactive      CodeType = "REACTIVE"
	CodeTypeRecovery      CodeType = "RECOVERY"
)

// Code holds the live one-time tokens for a single (user, purpose) pair.
// At most one row per pair exists; each new issuance overwrites the
// previous one.
type Code struct {
	UserID    string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	Type      CodeType  `gorm:"type:text;primaryKey" json:"type"`
	Tokens    []string  `gorm:"type:jsonb;serializer:json" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (Code) TableName() string { return "codes" }

// Matches reports whether token is in the live set and the expiry window
// has not passed.
func (c *Code) Matches(token string, now time.Time) bool {
	if now.After(c.ExpiresAt) {
		return false
	}
	for _, t := range c.Tokens {
		if t == token {
			return true
		}
	}
	return false
}
