package models

import (
	"fmt"
	"regexp"
	"time"
)

// Cadaster reconciliation outcomes. Flags share the same vocabulary minus
// Undecided, which is the default for freshly imported rows.
const (
	StatusUnchanged   = 1
	StatusMinorChange = 2
	StatusSubdivided  = 3
	StatusConflicting = 4
	StatusUndecided   = 5
)

var CadasterStatusLabels = map[int]string{
	StatusUnchanged:   "بدون تغییر",
	StatusMinorChange: "دارای تغییر جزئی",
	StatusSubdivided:  "تفکیک شده",
	StatusConflicting: "کاملاً غیرهمخوان",
	StatusUndecided:   "بدون تصمیم",
}

var (
	nationalCodeRe = regexp.MustCompile(`^[0-9]{10}$`)
	digitsOnlyRe   = regexp.MustCompile(`^[0-9]+$`)
)

type Cadaster struct {
	ID         int64  `gorm:"primary_key;autoIncrement"`
	UniqueCode string `gorm:"type:varchar(100);uniqueIndex"`
	JaamCode   string `gorm:"type:varchar(100)"`
	PlakName   string `gorm:"type:varchar(100)"`
	PlakAsli   string `gorm:"type:varchar(100);index:idx_cadaster_plak"`
	PlakFarei  string `gorm:"type:varchar(100);index:idx_cadaster_plak"`
	// registration district and section of the deed
	BakhshSabti   string `gorm:"type:varchar(100)"`
	NahiyeSabti   string `gorm:"type:varchar(100)"`
	Area          float64
	OwnerName     string `gorm:"type:varchar(100)"`
	OwnerLastname string `gorm:"type:varchar(100)"`
	FatherName    string `gorm:"type:varchar(100)"`
	NationalCode  string `gorm:"type:varchar(10);index"`
	Mobile        string `gorm:"type:varchar(20)"`
	// OwnershipKinde, NezaratType and ProjectName carry legacy vocabularies;
	// the interactive handlers constrain them, imported rows keep their values.
	OwnershipKinde   string `gorm:"type:varchar(20)"`
	ConsulateName    string `gorm:"type:varchar(100)"`
	NezaratType      string `gorm:"type:varchar(50)"`
	ProjectName      string `gorm:"type:varchar(50)"`
	NezartVerifyDate *time.Time
	Status           int `gorm:"default:5"`
	ChangeStatusDate *time.Time
	ChangeStatusByID *int64
	PelakID          *int64
	Pelak            *Pelak `gorm:"foreignKey:PelakID"`
	Border           string `gorm:"type:geometry(MultiPolygon,4326)"`
	Description      string `gorm:"type:text"`
	CreatedByID      *int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ValidStatus reports whether s is a known cadaster status.
func ValidStatus(s int) bool {
	_, ok := CadasterStatusLabels[s]
	return ok
}

// Validate checks the row-level constraints shared by the interactive
// handlers and the legacy importer.
func (c *Cadaster) Validate() error {
	if c.Border == "" {
		return fmt.Errorf("هندسه رکورد خالی است")
	}
	if c.UniqueCode == "" {
		return fmt.Errorf("کد یکتا خالی است")
	}
	if c.NationalCode != "" && !nationalCodeRe.MatchString(c.NationalCode) {
		return fmt.Errorf("کد ملی باید ده رقم باشد: %s", c.NationalCode)
	}
	digitFields := map[string]string{
		"کد جام":    c.JaamCode,
		"پلاک اصلی": c.PlakAsli,
		"پلاک فرعی": c.PlakFarei,
		"بخش ثبتی":  c.BakhshSabti,
	}
	for label, value := range digitFields {
		if value != "" && !digitsOnlyRe.MatchString(value) {
			return fmt.Errorf("فیلد %s فقط می‌تواند شامل اعداد باشد: %s", label, value)
		}
	}
	if !ValidStatus(c.Status) {
		return fmt.Errorf("وضعیت نامعتبر است: %d", c.Status)
	}
	return nil
}

// MarkStatusChanged stamps the status-change audit pair together.
func (c *Cadaster) MarkStatusChanged(status int, userID int64, at time.Time) {
	c.Status = status
	c.ChangeStatusDate = &at
	c.ChangeStatusByID = &userID
}
