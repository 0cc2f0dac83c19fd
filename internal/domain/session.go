package domain

import "time"

// Session is one logical logged-in device. Rows are never hard-deleted:
// logout flips Revoked and clears the stored refresh-token hash.
type Session struct {
	ID                 string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             string     `gorm:"type:uuid;index;not null" json:"user_id"`
	Revoked            bool       `gorm:"not null;default:false" json:"revoked"`
	RefreshTokenHashed *string    `json:"-"`
	DeviceName         string     `json:"device_name"`
	UserAgent          string     `json:"user_agent"`
	IP                 string     `json:"ip"`
	LastLoginAt        *time.Time `json:"last_login_at"`
	ExpiresAt          time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Session) TableName() string { return "sessions" }

// Active reports whether the session can still back an access token.
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
