package domain

import "time"

// OutcomeItem is the structured form an outcome item is stored in.
// Name and icon are copied out of the catalog at settlement time so
// later catalog edits cannot change recorded history.
type OutcomeItem struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// OutcomeRecord is one row of the global, append-only outcome log
type OutcomeRecord struct {
	RoundID    int64     `gorm:"primaryKey;autoIncrement:false" json:"round_id"`
	FirstName  string    `gorm:"type:varchar(32);not null" json:"first_name"`
	FirstIcon  string    `gorm:"type:varchar(16);not null" json:"first_icon"`
	SecondName string    `gorm:"type:varchar(32);not null" json:"second_name"`
	SecondIcon string    `gorm:"type:varchar(16);not null" json:"second_icon"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// TableName overrides the table name
func (OutcomeRecord) TableName() string {
	return "outcome_history"
}

// NewOutcomeRecord builds a record from the two resolved items
func NewOutcomeRecord(roundID int64, items []Item) *OutcomeRecord {
	rec := &OutcomeRecord{RoundID: roundID, CreatedAt: time.Now()}
	if len(items) > 0 {
		rec.FirstName = items[0].Name
		rec.FirstIcon = items[0].Icon
	}
	if len(items) > 1 {
		rec.SecondName = items[1].Name
		rec.SecondIcon = items[1].Icon
	}
	return rec
}

// Names returns the winning item names in stored order
func (o *OutcomeRecord) Names() []string {
	return []string{o.FirstName, o.SecondName}
}

// Items returns the structured outcome pair
func (o *OutcomeRecord) Items() []OutcomeItem {
	return []OutcomeItem{
		{Name: o.FirstName, Icon: o.FirstIcon},
		{Name: o.SecondName, Icon: o.SecondIcon},
	}
}
