package domain

import (
	"strings"
	"time"
)

// Override is an administrator-chosen result for a future round.
// When present it supersedes the deterministic derivation for that round only.
type Override struct {
	RoundID   int64     `gorm:"primaryKey;autoIncrement:false" json:"round_id"`
	Items     string    `gorm:"type:varchar(128);not null" json:"items"` // comma-joined item names, order preserved
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName overrides the table name
func (Override) TableName() string {
	return "outcome_overrides"
}

// NewOverride builds an override record for a round
func NewOverride(roundID int64, items []string) *Override {
	return &Override{
		RoundID:   roundID,
		Items:     strings.Join(items, ","),
		CreatedAt: time.Now(),
	}
}

// ItemNames returns the overridden names in stored order
func (o *Override) ItemNames() []string {
	if o.Items == "" {
		return nil
	}
	return strings.Split(o.Items, ",")
}
