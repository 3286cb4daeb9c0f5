package models

import (
	"time"
)

// Pelak is a registered land-parcel border. Verification state is paired:
// VerifiedByID and VerifiedAt are either both set or both null.
type Pelak struct {
	ID           int64  `gorm:"primary_key;autoIncrement"`
	Title        string `gorm:"type:varchar(255)"`
	Number       string `gorm:"type:varchar(100);uniqueIndex"`
	Border       string `gorm:"type:geometry(MultiPolygon,4326)"`
	IsVerified   bool   `gorm:"default:false"`
	VerifiedByID *int64
	VerifiedBy   *User `gorm:"foreignKey:VerifiedByID"`
	VerifiedAt   *time.Time
	ProvinceID   *int64
	Province     *Province `gorm:"foreignKey:ProvinceID"`
	CreatedByID  *int64
	CreatedAt    time.Time
}

// MarkVerified sets the paired verification fields in memory.
func (p *Pelak) MarkVerified(userID int64, at time.Time) {
	p.IsVerified = true
	p.VerifiedByID = &userID
	p.VerifiedAt = &at
}

// ClearVerified clears the paired verification fields in memory.
func (p *Pelak) ClearVerified() {
	p.IsVerified = false
	p.VerifiedByID = nil
	p.VerifiedAt = nil
}
