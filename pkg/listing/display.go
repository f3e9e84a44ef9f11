package listing

import (
	"strings"
	"time"
)

const (
	// DateTimeLayout renders a 24-hour clock followed by the meridiem, e.g.
	// "25/05/2019 14:30 PM". Existing templates depend on this exact shape.
	DateTimeLayout = "02/01/2006 15:04 PM"

	// TimeLayout renders the end of an open-house window.
	TimeLayout = "15:04 PM"
)

// DefaultLocation is the display timezone used when none is configured: a
// fixed UTC+11 offset, the summer offset of the agency's market.
var DefaultLocation = time.FixedZone("UTC+11", 11*60*60)

// PriceOverride replaces the derived price of listings matching an address.
type PriceOverride struct {
	// Address is compared against the listing's displayAddress.
	Address string `yaml:"address" validate:"required"`

	// Match is "exact" (default) or "contains".
	Match string `yaml:"match,omitempty" validate:"omitempty,oneof=exact contains"`

	// Text is shown instead of the price.
	Text string `yaml:"text" validate:"required"`
}

// Matches reports whether the override applies to address.
func (o PriceOverride) Matches(address string) bool {
	if o.Match == "contains" {
		return o.Address != "" && strings.Contains(address, o.Address)
	}
	return address == o.Address
}

// DefaultPriceOverrides returns the overrides applied when none are configured.
func DefaultPriceOverrides() []PriceOverride {
	return []PriceOverride{
		{
			Address: `"Orange Grove" 898 Orange Grove Road, Gunnedah NSW`,
			Text:    "Expressions of Interest",
		},
	}
}

// Placeholders are the texts shown when a listing lacks the data to derive a
// display field.
type Placeholders struct {
	Price        string
	OpenHome     string
	Venue        string
	Image        string
	VenueTBA     string
	AuctionPrice string
}

// Display controls how a Property renders its derived fields.
type Display struct {
	CurrencySymbol string
	LineBreak      string
	VenueLabel     string

	// Location is the timezone dates are rendered in.
	Location *time.Location

	PriceOverrides []PriceOverride
	Placeholders   Placeholders
}

// DefaultDisplay returns the settings the website templates were built for.
func DefaultDisplay() Display {
	return Display{
		CurrencySymbol: "$",
		LineBreak:      "<br>",
		VenueLabel:     "Auction Venue: ",
		Location:       DefaultLocation,
		PriceOverrides: DefaultPriceOverrides(),
		Placeholders: Placeholders{
			Price:        "Contact us for an updated price",
			OpenHome:     "Contact us for the next open home",
			Venue:        "Contact us for more information",
			Image:        "https://via.placeholder.com/2048x1365.png?text=Property+Image+Coming+Soon",
			VenueTBA:     "TBA",
			AuctionPrice: "Auction",
		},
	}
}

// withDefaults fills unset fields from DefaultDisplay.
func (d Display) withDefaults() Display {
	def := DefaultDisplay()
	if d.CurrencySymbol == "" {
		d.CurrencySymbol = def.CurrencySymbol
	}
	if d.LineBreak == "" {
		d.LineBreak = def.LineBreak
	}
	if d.VenueLabel == "" {
		d.VenueLabel = def.VenueLabel
	}
	if d.Location == nil {
		d.Location = def.Location
	}
	if d.PriceOverrides == nil {
		d.PriceOverrides = def.PriceOverrides
	}

	p := &d.Placeholders
	if p.Price == "" {
		p.Price = def.Placeholders.Price
	}
	if p.OpenHome == "" {
		p.OpenHome = def.Placeholders.OpenHome
	}
	if p.Venue == "" {
		p.Venue = def.Placeholders.Venue
	}
	if p.Image == "" {
		p.Image = def.Placeholders.Image
	}
	if p.VenueTBA == "" {
		p.VenueTBA = def.Placeholders.VenueTBA
	}
	if p.AuctionPrice == "" {
		p.AuctionPrice = def.Placeholders.AuctionPrice
	}
	return d
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimestamp parses the timestamp formats VaultRE emits. Values without
// zone information are read as UTC.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
