package models

import (
	"errors"
	"log"

	"github.com/jazijazi/jahadchecker/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

func InitDB() {
	var err error
	DB, err = gorm.Open(postgres.Open(config.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	DB.NamingStrategy = schema.NamingStrategy{
		SingularTable: true,
	}

	// geometry columns need postgis before AutoMigrate runs
	if err := DB.Exec(`CREATE EXTENSION IF NOT EXISTS postgis`).Error; err != nil {
		log.Printf("Failed to ensure postgis extension: %v", err)
	}

	if err := migrateAllTables(DB); err != nil {
		log.Printf("Failed to migrate tables: %v", err)
	}

	initDefaultUser(DB)
}

func migrateAllTables(db *gorm.DB) error {
	models := []interface{}{
		&Company{},
		&User{},
		&Province{},
		&Pelak{},
		&Cadaster{},
		&Flag{},
		&StagingDataset{},
	}

	return db.AutoMigrate(models...)
}

func initDefaultUser(db *gorm.DB) {
	user := User{
		ID:          1,
		Username:    "admin",
		FirstNameFa: "مدیر",
		LastNameFa:  "سامانه",
		IsSuperuser: true,
	}

	var existingUser User
	result := db.First(&existingUser, user.ID)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if err := db.Create(&user).Error; err != nil {
			log.Printf("Failed to create default user: %v", err)
		} else {
			log.Println("Default user created successfully")
		}
	}
}
