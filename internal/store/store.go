package store

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log"
	"time"

	"github.com/mitradev/ssogate/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps the GORM connection and owns all persistence operations.
// Every method takes a context so callers can bound store round-trips.
type Store struct {
	db *gorm.DB
}

func New(driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer, and an in-memory database exists
	// per connection. One pooled connection keeps both correct.
	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.User{},
		&models.Site{},
		&models.Division{},
		&models.Unit{},
		&models.Role{},
		&models.UserRole{},
		&models.Client{},
		&models.AccessGrant{},
		&models.AccessGroup{},
		&models.AccessGroupUser{},
		&models.AccessGroupClient{},
		&models.GrantArtifact{},
		&models.AuditLog{},
	); err != nil {
		return nil, err
	}

	store := &Store{db: db}

	// Seed default data
	if err := store.seedData(); err != nil {
		log.Printf("Warning: failed to seed data: %v", err)
	}

	return store, nil
}

func (s *Store) seedData() error {
	ctx := context.Background()

	// Create default admin user if the table is empty
	var userCount int64
	s.db.Model(&models.User{}).Count(&userCount)
	if userCount == 0 {
		password, err := generateRandomPassword(16)
		if err != nil {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := &models.User{
			ID:           uuid.New().String(),
			Email:        "admin@localhost",
			Name:         "Administrator",
			Status:       models.UserStatusActive,
			PasswordHash: string(hash),
			RoleID:       "admin",
			RoleName:     "Administrator",
		}
		if err := s.db.Create(admin).Error; err != nil {
			return err
		}
		log.Printf("Created default user: admin@localhost / %s", password)
	}

	// Create default first-party client if the table is empty
	var clientCount int64
	s.db.Model(&models.Client{}).Count(&clientCount)
	if clientCount == 0 {
		client := &models.Client{
			ClientID:                uuid.New().String(),
			Name:                    "SSOGate Portal",
			Description:             "Default first-party portal client",
			RedirectURIs:            models.StringArray{"http://localhost:3000/callback"},
			GrantTypes:              models.StringArray{"authorization_code", "refresh_token"},
			ResponseTypes:           models.StringArray{"code"},
			Scopes:                  models.StringArray{"openid", "profile", "email"},
			TokenEndpointAuthMethod: models.AuthMethodSecretBasic,
			IsFirstParty:            true,
			IsActive:                true,
		}
		secret, err := client.GenerateClientSecret(ctx)
		if err != nil {
			return err
		}
		if err := s.db.Create(client).Error; err != nil {
			return err
		}
		log.Printf("Created default OIDC client: %s (SSOGate Portal)", client.ClientID)
		log.Printf("Client Secret (save this): %s", secret)
	}

	return nil
}

// generateRandomPassword generates a random password of specified length
func generateRandomPassword(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// Use base64 URL encoding to get a safe, printable password
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

// Health checks the database connection
func (s *Store) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DB returns the underlying GORM database connection (for transactions)
func (s *Store) DB() *gorm.DB {
	return s.db
}

// now is split out so artifact expiry predicates stay consistent
func now() time.Time {
	return time.Now()
}
