package domain

import (
	"context"
	"time"
)

// Member is a registered user. The diamond balance lives on this row and is
// only ever mutated through the wallet service's atomic updates.
type Member struct {
	UserID       int64      `json:"user_id" gorm:"primaryKey;column:user_id;autoIncrement"`
	Username     string     `json:"username" gorm:"column:username;unique;not null"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;not null"`
	Nickname     string     `json:"nickname" gorm:"column:nickname"`
	Balance      int64      `json:"balance" gorm:"column:balance;not null;default:0"`
	Status       int        `json:"status" gorm:"column:status;default:1"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" gorm:"column:last_login_at"`
}

// TableName overrides the table name
func (Member) TableName() string {
	return "members"
}

// Member status constants
const (
	StatusActive    = 1
	StatusSuspended = 2
)

// IsActive checks if the member may log in and wager
func (m *Member) IsActive() bool {
	return m.Status == StatusActive
}

// MemberUseCase defines the interface adapters call into
type MemberUseCase interface {
	Register(ctx context.Context, username, password, nickname string) (int64, error)
	Login(ctx context.Context, username, password string) (int64, string, time.Time, error)
	ValidateToken(ctx context.Context, token string) (int64, string, error)
	GetMember(ctx context.Context, userID int64) (*Member, error)
}
