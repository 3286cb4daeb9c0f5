package models

import "time"

// Flags carry the same reconciliation vocabulary as cadasters except
// Undecided; a fresh flag starts at Unchanged.
var FlagStatusLabels = map[int]string{
	StatusUnchanged:   "بدون تغییر",
	StatusMinorChange: "دارای تغییر جزئی",
	StatusSubdivided:  "تفکیک شده",
	StatusConflicting: "کاملاً غیرهمخوان",
}

// Flag is a point-shaped field observation placed inside a cadaster border.
type Flag struct {
	ID          int64     `gorm:"primary_key;autoIncrement"`
	Description string    `gorm:"type:varchar(512)"`
	Status      int       `gorm:"default:1"`
	Point       string    `gorm:"type:geometry(Point,4326)"`
	CadasterID  int64     `gorm:"index"`
	Cadaster    *Cadaster `gorm:"foreignKey:CadasterID"`
	CreatedByID *int64
	CreatedAt   time.Time
}

// ValidFlagStatus reports whether s is a known flag status.
func ValidFlagStatus(s int) bool {
	_, ok := FlagStatusLabels[s]
	return ok
}
