package testdb

import (
	"fmt"
	"regexp"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reservehub/internal/database"
	"reservehub/internal/domain"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Open returns a migrated in-memory SQLite database private to the test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:reservehub_%s?mode=memory&cache=shared", unsafeChars.ReplaceAllString(t.Name(), "_"))

	db, err := database.ConnectWithLogger(dsn, logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	// one connection keeps the shared in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts an active user with the given balance.
func CreateUser(t testing.TB, db *gorm.DB, email string, balance int64) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		Balance:      balance,
		IsActive:     true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

// CreateService inserts a service with the given options.
func CreateService(t testing.TB, db *gorm.DB, name string, typ domain.ServiceType, options ...domain.ServiceOption) *domain.Service {
	t.Helper()
	s := &domain.Service{Name: name, Location: "Krakow", Type: typ}
	if err := db.Omit("Options").Create(s).Error; err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	for i := range options {
		options[i].ServiceID = s.ID
		if options[i].Capacity == 0 {
			options[i].Capacity = 2
		}
		if err := db.Omit("Service").Create(&options[i]).Error; err != nil {
			t.Fatalf("failed to create option: %v", err)
		}
	}
	s.Options = options
	return s
}
