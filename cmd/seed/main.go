package main

import (
	"fmt"
	"log"
	"time"

	"reservehub/internal/config"
	"reservehub/internal/database"
	"reservehub/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	// Cleanup old data (children first)
	log.Println("Cleaning old data...")
	for _, table := range []string{
		"message_reservations", "messages", "reviews", "balance_transactions",
		"reservations", "service_options", "services", "service_status",
		"user_tokens", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("clean %s: %v", table, err)
		}
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := seedUsers(tx, cfg.Auth.InitialBalance); err != nil {
			return err
		}
		if err := seedCatalog(tx); err != nil {
			return err
		}
		return tx.Create(&domain.ServiceStatus{Status: domain.StatusOperational}).Error
	}); err != nil {
		log.Fatal("Seed failed:", err)
	}

	log.Println("Seed completed")
}

func seedUsers(tx *gorm.DB, balance int64) error {
	log.Println("Creating users...")

	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	staff := domain.User{
		Email:        "admin@reservehub.local",
		PasswordHash: string(adminHash),
		FirstName:    "Site",
		LastName:     "Admin",
		IsActive:     true,
		IsStaff:      true,
	}
	if err := tx.Create(&staff).Error; err != nil {
		return err
	}
	log.Println("Admin created: admin@reservehub.local / admin123")

	userHash, err := bcrypt.GenerateFromPassword([]byte("user1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	for i, name := range []string{"Anna", "Marek", "Ola"} {
		u := domain.User{
			Email:        fmt.Sprintf("user%d@reservehub.local", i+1),
			PasswordHash: string(userHash),
			FirstName:    name,
			LastName:     "Demo",
			Balance:      balance,
			IsActive:     true,
		}
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
	}
	log.Println("Users created: user1..3@reservehub.local / user1234")
	return nil
}

type seedOption struct {
	name     string
	capacity int
	price    int64
}

func seedCatalog(tx *gorm.DB) error {
	log.Println("Creating services...")

	from := time.Now().UTC().Truncate(24 * time.Hour)
	to := from.AddDate(1, 0, 0)

	services := []struct {
		name, location, description string
		typ                         domain.ServiceType
		options                     []seedOption
	}{
		{"Old Town Hotel", "Krakow", "Rooms next to the main square", domain.ServiceHotel,
			[]seedOption{{"Single room", 1, 180}, {"Double room", 2, 260}, {"Suite", 4, 520}}},
		{"Riverside Bistro", "Warsaw", "Seasonal menu by the Vistula", domain.ServiceRestaurant,
			[]seedOption{{"Table for two", 2, 40}, {"Family table", 6, 90}}},
		{"Thermal Spa", "Zakopane", "Pools and massages with a mountain view", domain.ServiceSpa,
			[]seedOption{{"Day pass", 1, 120}, {"Massage 60 min", 1, 220}}},
		{"Tatra Hiking Tour", "Zakopane", "Guided one-day trail", domain.ServiceTour,
			[]seedOption{{"Group ticket", 12, 150}}},
		{"Harbour Hotel", "Gdansk", "", domain.ServiceHotel,
			[]seedOption{{"Double room", 2, 300}}},
	}

	for _, s := range services {
		svc := domain.Service{Name: s.name, Location: s.location, Type: s.typ, Description: s.description}
		if err := tx.Omit("Options").Create(&svc).Error; err != nil {
			return err
		}
		for _, o := range s.options {
			opt := domain.ServiceOption{
				ServiceID:     svc.ID,
				Name:          o.name,
				Capacity:      o.capacity,
				Price:         o.price,
				AvailableFrom: &from,
				AvailableTo:   &to,
			}
			if err := tx.Omit("Service").Create(&opt).Error; err != nil {
				return err
			}
		}
	}
	log.Printf("Created %d services", len(services))
	return nil
}
