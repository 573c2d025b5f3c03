package models

import (
	"bitbucket.org/mmdatafocus/invoiceflow_backend/config"
)

// MigrateTable runs gorm AutoMigrate for every persisted model.
func MigrateTable() {
	db := config.GetDB()
	logger := config.GetLogger()

	err := db.AutoMigrate(
		&User{},
		&Project{},
		&ProjectResource{},
		&InvoiceRecord{},
	)
	if err != nil {
		config.LogError(logger, "models", "MigrateTable", "AutoMigrate", nil, err)
	}
}
