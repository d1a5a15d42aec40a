// Package domain defines the persistence models for members, caffeine
// profiles, intake events, and the drink catalogue. These types are mapped
// with GORM and form the core data layer of the caffeine tracking application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Member represents an account. Points accumulate from claimed challenges
// and are spent in the shop.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username: unique login handle.
//   - PasswordHash: bcrypt digest, never serialized.
//   - Points: current shop balance, credited on challenge claims.
//   - LanguageCode: BCP 47 tag selected in the profile screen.
type Member struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	Username     string         `json:"username"      gorm:"type:varchar(64);not null;uniqueIndex:ux_member_username"`
	Name         string         `json:"name"          gorm:"type:varchar(128);not null"`
	PasswordHash string         `json:"-"             gorm:"type:varchar(128);not null"`
	Points       int            `json:"points"        gorm:"not null;default:0"`
	ProfilePhoto string         `json:"profile_photo,omitempty" gorm:"type:text"`
	LanguageCode string         `json:"language_code" gorm:"type:varchar(16);not null;default:'en'"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`
}

// TableName returns the database table name for Member.
func (Member) TableName() string { return "members" }

// CaffeineProfile holds per-member caffeine settings plus a cached running
// total of today's intake.
//
// CurrentMg mirrors the milligram sum of today's intake events. It is
// adjusted on every insert and delete, and recomputed from the event log
// whenever a read finds the row untouched since a previous calendar day, so
// the cache is always at most one read away from the source of truth.
type CaffeineProfile struct {
	ID           string         `json:"id"             gorm:"type:char(36);primaryKey"`
	MemberID     string         `json:"member_id"      gorm:"type:char(36);not null;uniqueIndex:ux_profile_member"`
	WeightKg     float64        `json:"weight_kg"      gorm:"not null;default:70"`
	Gender       string         `json:"gender"         gorm:"type:varchar(8);not null;default:'M'"`
	BirthDate    *time.Time     `json:"birth_date,omitempty"`
	DailyLimitMg float64        `json:"daily_limit_mg" gorm:"not null;default:400"`
	CurrentMg    float64        `json:"current_mg"     gorm:"not null;default:0"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"              gorm:"index"`

	// Member is the owning account. Profiles are cascade-deleted with it.
	Member Member `json:"-" gorm:"foreignKey:MemberID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CaffeineProfile.
func (CaffeineProfile) TableName() string { return "caffeine_profiles" }

// IntakeEvent is a single logged drink. Events are immutable once created;
// they can only be deleted, either singly or in bulk ("reset today").
//
// MenuID is optional: manual entries carry only a brand/drink name and a
// milligram amount.
type IntakeEvent struct {
	ID         string         `json:"id"          gorm:"type:char(36);primaryKey"`
	MemberID   string         `json:"member_id"   gorm:"type:char(36);not null;index:idx_member_intake,priority:1"`
	BrandName  string         `json:"brand_name"  gorm:"type:varchar(128);not null"`
	DrinkName  string         `json:"drink_name"  gorm:"type:varchar(128);not null"`
	Milligrams float64        `json:"milligrams"  gorm:"not null;check:milligrams >= 0"`
	Temp       string         `json:"temp,omitempty"    gorm:"type:varchar(8)"`
	MenuID     *string        `json:"menu_id,omitempty" gorm:"type:char(36);index"`
	ConsumedAt time.Time      `json:"consumed_at" gorm:"not null;index:idx_member_intake,priority:2"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `json:"-"           gorm:"index"`

	// Member is the owning account. Events are cascade-deleted with it.
	Member Member `json:"-" gorm:"foreignKey:MemberID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for IntakeEvent.
func (IntakeEvent) TableName() string { return "intake_events" }

// CategoryDecaf marks a catalogue menu as decaffeinated. The decaf
// substitution challenge checks this flag first and falls back to a
// milligram heuristic for uncatalogued drinks.
const CategoryDecaf = "decaf"

// Brand is a coffee chain or drink maker in the static catalogue.
type Brand struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(128);not null;uniqueIndex:ux_brand_name"`
	Photo     string    `json:"photo,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Brand.
func (Brand) TableName() string { return "brands" }

// Menu is a catalogue drink belonging to a Brand.
type Menu struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	BrandID    string    `json:"brand_id"    gorm:"type:char(36);not null;index"`
	Name       string    `json:"name"        gorm:"type:varchar(128);not null"`
	Temp       string    `json:"temp,omitempty"     gorm:"type:varchar(8)"`
	Size       string    `json:"size,omitempty"     gorm:"type:varchar(16)"`
	CaffeineMg float64   `json:"caffeine_mg" gorm:"not null"`
	Category   string    `json:"category,omitempty" gorm:"type:varchar(32);index"`
	Photo      string    `json:"photo,omitempty"    gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`

	// Brand is the owning chain. Menus are cascade-deleted with it.
	Brand Brand `json:"-" gorm:"foreignKey:BrandID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Menu.
func (Menu) TableName() string { return "menus" }

// CustomMenu is a member-defined drink. A member may not register two
// custom drinks under the same name (enforced by unique index).
type CustomMenu struct {
	ID         string         `json:"id"          gorm:"type:char(36);primaryKey"`
	MemberID   string         `json:"member_id"   gorm:"type:char(36);not null;uniqueIndex:ux_custom_member_name,priority:1"`
	Name       string         `json:"name"        gorm:"type:varchar(128);not null;uniqueIndex:ux_custom_member_name,priority:2"`
	CaffeineMg float64        `json:"caffeine_mg" gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"           gorm:"index"`

	// Member is the owning account. Custom menus are cascade-deleted with it.
	Member Member `json:"-" gorm:"foreignKey:MemberID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CustomMenu.
func (CustomMenu) TableName() string { return "custom_menus" }
