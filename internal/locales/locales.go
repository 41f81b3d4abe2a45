// Package locales stores the locale catalog and resolves the system
// default locale consumed by the parameter pipeline.
package locales

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Locale is one configured locale.
type Locale struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Code is the language/region key, e.g. "en" or "fr-CA".
	Code string `gorm:"type:varchar(20);not null;uniqueIndex" json:"code"`
	Name string `gorm:"type:varchar(100)" json:"name"`

	// IsDefault marks the system default locale. Exactly one locale
	// carries it.
	IsDefault bool `gorm:"not null;default:false;index" json:"isDefault"`
}

// TableName specifies the table name.
func (Locale) TableName() string {
	return "engine_locales"
}

// Store reads and seeds the locale catalog.
type Store struct {
	db *gorm.DB
}

// NewStore creates a locale store and migrates its table.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Locale{}); err != nil {
		return nil, fmt.Errorf("failed to migrate locales: %w", err)
	}
	return &Store{db: db}, nil
}

// GetDefaultLocale returns the code of the default locale.
func (s *Store) GetDefaultLocale(ctx context.Context) (string, error) {
	var locale Locale
	err := s.db.WithContext(ctx).Where("is_default = ?", true).First(&locale).Error
	if err != nil {
		return "", fmt.Errorf("failed to resolve default locale: %w", err)
	}
	return locale.Code, nil
}

// EnsureDefault seeds the default locale if no default exists yet.
func (s *Store) EnsureDefault(ctx context.Context, code, name string) error {
	var count int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&Locale{}).Where("is_default = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	locale := Locale{Code: code, Name: name, IsDefault: true}
	if err := db.Where(Locale{Code: code}).Attrs(locale).FirstOrCreate(&locale).Error; err != nil {
		return fmt.Errorf("failed to seed default locale %q: %w", code, err)
	}
	if !locale.IsDefault {
		return db.Model(&locale).Update("is_default", true).Error
	}
	return nil
}

// Add registers a non-default locale.
func (s *Store) Add(ctx context.Context, code, name string) error {
	locale := Locale{Code: code, Name: name}
	err := s.db.WithContext(ctx).Where(Locale{Code: code}).Attrs(locale).FirstOrCreate(&locale).Error
	if err != nil {
		return fmt.Errorf("failed to add locale %q: %w", code, err)
	}
	return nil
}

// List returns every configured locale ordered by code.
func (s *Store) List(ctx context.Context) ([]Locale, error) {
	var out []Locale
	err := s.db.WithContext(ctx).Order("code ASC").Find(&out).Error
	return out, err
}
