package domain

import (
	"time"

	"gorm.io/gorm"
)

// Challenge target types. DAILY challenges reset and become claimable again
// each calendar day; STREAK and CUMULATIVE challenges can be claimed once.
const (
	TargetDaily      = "DAILY"
	TargetStreak     = "STREAK"
	TargetCumulative = "CUMULATIVE"
)

// Points credited per claim, by target type.
const (
	PointsDaily    = 1
	PointsLongTerm = 5
)

// ChallengeDefinition is static reference data describing one entry in the
// fixed challenge catalogue. Rows are seeded at startup and never mutated
// by request handlers.
type ChallengeDefinition struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	Code        string    `json:"code"         gorm:"type:varchar(64);not null;uniqueIndex:ux_challenge_code"`
	Title       string    `json:"title"        gorm:"type:varchar(255);not null"`
	Description string    `json:"description"  gorm:"type:text"`
	TargetType  string    `json:"target_type"  gorm:"type:varchar(16);not null;check:target_type IN ('DAILY','STREAK','CUMULATIVE')"`
	TargetValue int       `json:"target_value" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for ChallengeDefinition.
func (ChallengeDefinition) TableName() string { return "challenge_definitions" }

// ChallengeProgress records a claim. For DAILY challenges ProgressDate is the
// claim's calendar day; for STREAK and CUMULATIVE challenges it is a fixed
// zero-value marker so the unique index admits a single lifetime row.
//
// The unique index on (member, code, date) is what serializes concurrent
// claims: the loser of a race hits a constraint violation instead of
// crediting points twice.
type ChallengeProgress struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	MemberID      string         `json:"member_id"      gorm:"type:char(36);not null;uniqueIndex:ux_progress_member_code_date,priority:1"`
	ChallengeCode string         `json:"challenge_code" gorm:"type:varchar(64);not null;uniqueIndex:ux_progress_member_code_date,priority:2"`
	ProgressDate  string         `json:"progress_date"  gorm:"type:varchar(10);not null;uniqueIndex:ux_progress_member_code_date,priority:3"`
	IsCompleted   bool           `json:"is_completed"   gorm:"not null;default:true"`
	ClaimedAt     time.Time      `json:"claimed_at"     gorm:"not null"`
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `json:"-"              gorm:"index"`

	// Member is the claiming account. Progress rows are cascade-deleted with it.
	Member Member `json:"-" gorm:"foreignKey:MemberID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ChallengeProgress.
func (ChallengeProgress) TableName() string { return "challenge_progress" }
