package bootstrap

import (
	"log"

	"anoa.com/pocmarket/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.UserBadge{},
		&entity.Project{},
		&entity.Proposal{},
		&entity.Contract{},
		&entity.Message{},
		&entity.Review{},
		&entity.Notification{},
		&entity.BlogPost{},
		&entity.Attachment{},
	)
}

func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "admin@pocmarket.dev").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		Email:        "admin@pocmarket.dev",
		PasswordHash: string(hashed),
		DisplayName:  "Administrator",
		Role:         entity.RoleAdmin,
		Status:       entity.UserActive,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Println("   Email: admin@pocmarket.dev")
	log.Println("   Password: admin123")

	return nil
}
