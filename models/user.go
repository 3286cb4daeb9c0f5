package models

// User identity is resolved upstream (reverse proxy auth); this table only
// carries attribution and role lookups for the landreg flows.
type User struct {
	ID          int64  `gorm:"primary_key;autoIncrement"`
	Username    string `gorm:"type:varchar(150);uniqueIndex"`
	FirstNameFa string `gorm:"type:varchar(150)"`
	LastNameFa  string `gorm:"type:varchar(150)"`
	IsSuperuser bool   `gorm:"default:false"`
	CompanyID   *int64
	Company     *Company `gorm:"foreignKey:CompanyID"`
}

type Company struct {
	ID           int64  `gorm:"primary_key;autoIncrement"`
	NameFa       string `gorm:"type:varchar(255)"`
	IsNazer      bool   `gorm:"default:false"` // surveying supervisor company
	IsSupernazer bool   `gorm:"default:false"`
	IsMoshaver   bool   `gorm:"default:false"` // consultant company
	ProvinceID   *int64
	Province     *Province `gorm:"foreignKey:ProvinceID"`
}

// CanUploadPelak reports whether the user may upload pelak borders or legacy
// cadaster datasets.
func (u *User) CanUploadPelak() bool {
	if u.IsSuperuser {
		return true
	}
	return u.Company != nil && u.Company.IsNazer
}

// CanCreateFlag reports whether the user may place flags on cadasters.
func (u *User) CanCreateFlag() bool {
	if u.IsSuperuser {
		return true
	}
	return u.Company != nil && (u.Company.IsNazer || u.Company.IsSupernazer)
}

// CanChangeCadasterStatus reports whether the user may edit cadaster status.
func (u *User) CanChangeCadasterStatus() bool {
	if u.IsSuperuser {
		return true
	}
	return u.Company != nil && u.Company.IsMoshaver
}
