package controllers

import (
	"gorm.io/gorm"

	"github.com/himique/Industial-Automation/config"
	"github.com/himique/Industial-Automation/models"
)

// MigrateModels runs the database migrations
func MigrateModels(db *gorm.DB) error {
	config.DB = db
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Component{},
		&models.Workstation{},
		&models.AssemblyPlan{},
		&models.AssemblyStep{},
	)
}
