package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/toolshed/internal/entities"
)

var defaultTools = []entities.Tool{
	{Name: "hammer", Description: "Claw hammer"},
	{Name: "cordless_drill", Description: "18V cordless drill"},
	{Name: "circular_saw", Description: "Circular saw"},
	{Name: "ladder", Description: "Extension ladder"},
	{Name: "wrench_set", Description: "Metric wrench set"},
	{Name: "paint_sprayer", Description: "Airless paint sprayer"},
	{Name: "pressure_washer", Description: "Electric pressure washer"},
	{Name: "angle_grinder", Description: "Angle grinder"},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Map the driver's UNIQUE-constraint failures to gorm.ErrDuplicatedKey
		// so the uniqueness race on signup is detectable by error identity.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Tool{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	// Seed default tools
	if err := database.seedTools(); err != nil {
		return nil, fmt.Errorf("failed to seed tools: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedTools() error {
	for _, tool := range defaultTools {
		var existing entities.Tool
		result := d.DB.Where("name = ?", tool.Name).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&tool).Error; err != nil {
				return fmt.Errorf("failed to create tool %s: %w", tool.Name, err)
			}
		}
	}
	return nil
}
