// Package whatsapp composes the best-effort order notification handed to
// the vendor: a wa.me link carrying a percent-encoded order summary.
// Delivery is not guaranteed; the persisted order is the source of truth.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"warung-menu/internal/domain"
)

// DefaultCountryCode is the dialing code numbers are normalized to when
// the deployment does not configure one
const DefaultCountryCode = "62"

const divider = "─────────────────────────"

// NormalizeNumber converts a vendor phone number to international
// dialing format: all non-digits are stripped, a leading "0" is
// rewritten to the country code, and a bare local number gets the
// country code prefixed. A number already carrying the code is left
// unchanged.
func NormalizeNumber(number, countryCode string) string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	clean := b.String()

	if strings.HasPrefix(clean, "0") {
		clean = countryCode + clean[1:]
	}
	if !strings.HasPrefix(clean, countryCode) {
		clean = countryCode + clean
	}
	return clean
}

// BuildOrderMessage renders the plain-text order summary sent to the
// vendor: header with the site name, customer name, timestamp, itemized
// list with per-line quantity, price, and subtotal, grand total, and the
// optional customer note.
func BuildOrderMessage(siteName string, order *domain.Order, items []*domain.OrderItem) string {
	if siteName == "" {
		siteName = domain.DefaultSiteSettings().SiteName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Pesanan Baru dari %s*\n\n", siteName)
	fmt.Fprintf(&b, "*Nama:* %s\n", order.CustomerName)
	fmt.Fprintf(&b, "*Tanggal:* %s\n\n", order.CreatedAt.Format("2 January 2006 15:04"))
	b.WriteString("*Daftar Pesanan:*\n")
	b.WriteString(divider + "\n")

	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.ProductName)
		fmt.Fprintf(&b, "   %dx %s = %s\n", item.Quantity, FormatPrice(item.ProductPrice), FormatPrice(item.Subtotal))
	}

	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "*Total: %s*\n", FormatPrice(order.TotalPrice))

	if order.CustomerNote != "" {
		fmt.Fprintf(&b, "\n*Catatan:* %s\n", order.CustomerNote)
	}

	b.WriteString("\nTerima kasih!")
	return b.String()
}

// Link builds the wa.me URL opening a chat with the normalized number
// and the message prefilled
func Link(normalizedNumber, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", normalizedNumber, url.QueryEscape(message))
}

// FormatPrice renders an amount in rupiah with dot thousand separators,
// e.g. "Rp 15.000"
func FormatPrice(amount float64) string {
	n := int64(amount)
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		s = s[1:]
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := "Rp " + strings.Join(parts, ".")
	if n < 0 {
		out = "-" + out
	}
	return out
}
