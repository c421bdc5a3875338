package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/teamspace/guardrail/internal/models"
)

func main() {
	db, err := gorm.Open(sqlite.Open("./data/guardrail.db"), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.Invitation{},
		&models.ModerationLog{},
		&models.SpamAudit{},
		&models.AlertProvider{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Println("✓ Database migrated successfully")

	admin := models.User{
		UUID:    uuid.NewString(),
		Email:   "admin@example.com",
		Name:    "Site Admin",
		Role:    "admin",
		Enabled: true,
	}
	if err := admin.SetPassword("changeme123"); err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	users := []models.User{
		admin,
		mustUser("dana@example.com", "Dana Reeve"),
		mustUser("sam@example.com", "Sam Ortiz"),
		// Names a moderator would want to look at.
		mustUser("promo@example.com", "WIN FREE CASH NOW"),
		mustUser("deals@example.com", "Best Deals 88888"),
	}
	for i := range users {
		if err := db.FirstOrCreate(&users[i], models.User{Email: users[i].Email}).Error; err != nil {
			log.Fatal("Failed to seed user:", err)
		}
	}
	fmt.Printf("✓ Seeded %d users\n", len(users))

	now := time.Now()
	teams := []models.Team{
		{
			UUID:    uuid.NewString(),
			Name:    "Northwind Consulting",
			OwnerID: users[1].ID,
			Status:  models.TeamStatusActive,
		},
		{
			UUID:    uuid.NewString(),
			Name:    "Orchard Studio",
			OwnerID: users[2].ID,
			Status:  models.TeamStatusActive,
		},
		{
			UUID:         uuid.NewString(),
			Name:         "FREE MONEY CLICK HERE!!!",
			OwnerID:      users[3].ID,
			Status:       models.TeamStatusFlagged,
			StatusReason: "Spam/Abuse",
			ModeratedAt:  &now,
			ModeratedBy:  admin.UUID,
		},
		{
			UUID:         uuid.NewString(),
			Name:         "crypto giveaway 77777",
			OwnerID:      users[4].ID,
			Status:       models.TeamStatusSuspended,
			StatusReason: "Terms of Service Violation",
			ModeratedAt:  &now,
			ModeratedBy:  admin.UUID,
		},
	}
	for i := range teams {
		if err := db.FirstOrCreate(&teams[i], models.Team{Name: teams[i].Name}).Error; err != nil {
			log.Fatal("Failed to seed team:", err)
		}
	}
	fmt.Printf("✓ Seeded %d teams\n", len(teams))

	fmt.Println("Done. Log in as admin@example.com / changeme123")
}

func mustUser(email, name string) models.User {
	u := models.User{
		UUID:    uuid.NewString(),
		Email:   email,
		Name:    name,
		Role:    "user",
		Enabled: true,
	}
	if err := u.SetPassword("changeme123"); err != nil {
		log.Fatal("Failed to hash password:", err)
	}
	return u
}
