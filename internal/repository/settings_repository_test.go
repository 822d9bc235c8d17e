package repository

import (
	"context"
	"testing"

	"warung-menu/internal/domain"
)

func TestSettingsGetMissingRow(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(testDB)

	if _, err := testDB.Exec(`DELETE FROM site_settings`); err != nil {
		t.Fatalf("Failed to clear settings: %v", err)
	}

	_, err := repo.Get(ctx)
	if err != ErrSettingsNotFound {
		t.Errorf("Expected ErrSettingsNotFound, got %v", err)
	}
}

func TestSettingsUpsertKeepsSingleRow(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(testDB)

	if _, err := testDB.Exec(`DELETE FROM site_settings`); err != nil {
		t.Fatalf("Failed to clear settings: %v", err)
	}

	first := &domain.SiteSettings{
		SiteName:       "Warung Bu Siti",
		Slogan:         "Makanan Enak & Terjangkau",
		WhatsAppNumber: "08123456789",
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if first.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be populated on insert")
	}

	second := &domain.SiteSettings{
		SiteName:       "Warung Baru",
		LogoURL:        "https://example.com/logo.png",
		Slogan:         "Slogan Baru",
		WhatsAppNumber: "628999999999",
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.SiteName != "Warung Baru" || got.WhatsAppNumber != "628999999999" {
		t.Errorf("Expected the second upsert to win, got %+v", got)
	}

	var count int
	if err := testDB.QueryRow(`SELECT COUNT(*) FROM site_settings`).Scan(&count); err != nil {
		t.Fatalf("Failed to count settings rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly one settings row, got %d", count)
	}
}
