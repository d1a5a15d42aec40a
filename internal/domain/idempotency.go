package domain

import "time"

// Idempotency represents a recorded result of a previously processed intake
// submission, keyed by (member_id, key). It enables safe retries of
// POST /caffeine/intake (double tap, flaky network) by returning the
// originally created event without logging the drink twice.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	MemberID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_member_key,priority:1"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_member_key,priority:2"`
	EventID   string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
