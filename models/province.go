package models

type Province struct {
	ID     int64  `gorm:"primary_key;autoIncrement"`
	NameFa string `gorm:"type:varchar(100)"`
	NameEn string `gorm:"type:varchar(100)"`
	Code   string `gorm:"type:varchar(10);index"`
	Border string `gorm:"type:geometry(MultiPolygon,4326)"`
}
