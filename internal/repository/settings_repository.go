package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"warung-menu/internal/domain"
)

var (
	ErrSettingsNotFound = errors.New("site settings not found")
)

// SettingsRepository provides access to the singleton site settings row
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.SiteSettings, error)
	// Upsert updates the row if present and inserts it otherwise
	Upsert(ctx context.Context, settings *domain.SiteSettings) error
}

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository
func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get retrieves the singleton settings row
func (r *settingsRepository) Get(ctx context.Context) (*domain.SiteSettings, error) {
	query := `
		SELECT site_name, logo_url, slogan, whatsapp_number, updated_at
		FROM site_settings
		WHERE singleton = TRUE
	`

	settings := &domain.SiteSettings{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&settings.SiteName,
		&settings.LogoURL,
		&settings.Slogan,
		&settings.WhatsAppNumber,
		&settings.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to get site settings: %w", err)
	}

	return settings, nil
}

// Upsert writes the settings row, inserting it on first save. The
// singleton column's unique constraint guarantees at most one row.
func (r *settingsRepository) Upsert(ctx context.Context, settings *domain.SiteSettings) error {
	query := `
		INSERT INTO site_settings (singleton, site_name, logo_url, slogan, whatsapp_number, updated_at)
		VALUES (TRUE, $1, $2, $3, $4, NOW())
		ON CONFLICT (singleton) DO UPDATE
		SET site_name = EXCLUDED.site_name,
		    logo_url = EXCLUDED.logo_url,
		    slogan = EXCLUDED.slogan,
		    whatsapp_number = EXCLUDED.whatsapp_number,
		    updated_at = NOW()
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		settings.SiteName,
		settings.LogoURL,
		settings.Slogan,
		settings.WhatsAppNumber,
	).Scan(&settings.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert site settings: %w", err)
	}

	return nil
}
