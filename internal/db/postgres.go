package db

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Maks-am-I/marinaBr/internal/models"
)

var DB *gorm.DB

func Init() {

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Europe/Moscow",
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_USER", "bakery"),
		getEnv("POSTGRES_PASSWORD", "bakery"),
		getEnv("POSTGRES_DB", "bakery"),
		getEnv("DB_PORT", "5432"),
	)

	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	log.Info("Database connected and migrated successfully")
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductBundleItem{},
		&models.ReadySolution{},
		&models.ReadySolutionItem{},
		&models.Order{},
		&models.OrderItem{},
	)
}

func SetTestDB(testDB *gorm.DB) {
	DB = testDB
}

func getEnv(key, fallback string) string {

	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return fallback
}
