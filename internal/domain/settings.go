package domain

import "time"

// SiteSettings is the singleton branding record for the storefront.
// At most one row exists; writes use upsert semantics.
type SiteSettings struct {
	SiteName       string    `json:"site_name" db:"site_name"`
	LogoURL        string    `json:"logo_url" db:"logo_url"`
	Slogan         string    `json:"slogan" db:"slogan"`
	WhatsAppNumber string    `json:"whatsapp_number" db:"whatsapp_number"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultSiteSettings returns the branding used before an admin has
// configured anything.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SiteName: "Menu Warung",
		Slogan:   "Makanan Enak & Terjangkau",
	}
}
