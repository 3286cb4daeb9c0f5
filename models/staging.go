package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	StagingNotMatched = "not-matched"
	StagingMatched    = "matched"
)

// StagingDataset records one materialized geodatabase layer awaiting import.
// MatchedByID and MatchedAt are either both set or both null.
type StagingDataset struct {
	ID           int64  `gorm:"primary_key;autoIncrement"`
	TableName    string `gorm:"type:varchar(255);uniqueIndex"`
	LayerName    string `gorm:"type:varchar(255)"`
	GeomType     string `gorm:"type:varchar(50)"`
	FeatureCount int
	SrcFileName  string `gorm:"type:varchar(255)"`
	ProvinceID   *int64
	Status       string `gorm:"type:varchar(20);default:not-matched;index"`
	MatchedByID  *int64
	MatchedBy    *User `gorm:"foreignKey:MatchedByID"`
	MatchedAt    *time.Time
	CreatedByID  *int64
	CreatedAt    time.Time
}

// MarkStagingMatched flips a dataset to matched exactly once. The status
// predicate makes concurrent imports of the same dataset race-safe: only
// one caller observes reported=true.
func MarkStagingMatched(db *gorm.DB, id int64, userID int64) (bool, error) {
	now := time.Now()
	res := db.Model(&StagingDataset{}).
		Where("id = ? AND status = ?", id, StagingNotMatched).
		Updates(map[string]interface{}{
			"status":        StagingMatched,
			"matched_by_id": userID,
			"matched_at":    now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
