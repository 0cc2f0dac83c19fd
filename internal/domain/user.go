package domain

import "time"

type UserStatus string

const (
	UserStatusActive     UserStatus = "ACTIVE"
	UserStatusDisabled   UserStatus = "DISABLED"
	UserStatusRestricted UserStatus = "RESTRICTED"
	UserStatusCheckpoint UserStatus = "CHECKPOINT"
	UserStatusBanned     UserStatus = "BANNED"
)

type User struct {
	ID             string     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProfileID      string     `gorm:"uniqueIndex;not null" json:"profile_id"`
	DisplayName    string     `gorm:"not null" json:"display_name"`
	PasswordHashed string     `gorm:"not null" json:"-"`
	Birthday       *time.Time `json:"birthday"`
	Gender         string     `json:"gender"`
	Status         UserStatus `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	LastLoginAt    *time.Time `json:"last_login_at"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Emails   []Email   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"emails,omitempty"`
	Sessions []Session `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Codes    []Code    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string { return "users" }

// PrimaryEmail returns the address that identifies the account, or ""
// when the emails relation was not loaded.
func (u *User) PrimaryEmail() string {
	for _, e := range u.Emails {
		if e.Primary {
			return e.Address
		}
	}
	return ""
}

// Redacted returns a copy safe for transmission: the password hash is
// stripped.
func (u User) Redacted() User {
	u.PasswordHashed = ""
	return u
}

// Email is one address on file for a user. Exactly one per user carries
// Primary=true; addresses are unique across all users.
type Email struct {
	ID        string    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Address   string    `gorm:"uniqueIndex;not null" json:"address"`
	Primary   bool      `gorm:"not null;default:false" json:"primary"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Email) TableName() string { return "emails" }
