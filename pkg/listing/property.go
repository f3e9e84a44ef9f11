package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.English)

// env is shared by every Property a Repository produces.
type env struct {
	display Display
	fetcher Fetcher
	clock   clock.Clock
	logger  zerolog.Logger
}

// Property is the display-ready view of one listing. Every derivation is
// total: missing or malformed data yields a placeholder, never an error.
type Property struct {
	raw RawListing
	env *env
}

// ID returns the upstream listing id.
func (p *Property) ID() string {
	return p.raw.ID.String()
}

// Status returns the upstream listing status.
func (p *Property) Status() string {
	return p.raw.Status
}

// Address returns the listing's display address.
func (p *Property) Address() string {
	return p.raw.DisplayAddress
}

// Attr returns a raw top-level attribute such as "bed" or "garages".
func (p *Property) Attr(name string) Value {
	return p.raw.Attr(name)
}

// Raw returns the decoded upstream record.
func (p *Property) Raw() RawListing {
	return p.raw
}

// IsAuctioned reports whether the listing is marketed for auction and has an
// auction date.
func (p *Property) IsAuctioned() bool {
	if p.raw.AuctionDetails == nil || !p.raw.AuctionDetails.DateTime.Truthy() {
		return false
	}
	return strings.ToLower(p.raw.SearchPrice.String()) == "auction" ||
		strings.ToLower(p.raw.DisplayPrice.String()) == "auction"
}

// Price returns the display price: the auction label, a configured override,
// the formatted search price, or the price placeholder.
func (p *Property) Price() string {
	d := p.env.display
	if p.IsAuctioned() {
		return d.Placeholders.AuctionPrice
	}

	for _, o := range d.PriceOverrides {
		if o.Matches(p.raw.DisplayAddress) {
			return o.Text
		}
	}

	if !p.raw.SearchPrice.Truthy() {
		return d.Placeholders.Price
	}
	amount, ok := p.raw.SearchPrice.Float64()
	if !ok || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return d.Placeholders.Price
	}

	rounded := math.Round(amount)
	if rounded == 0 {
		rounded = 0 // drop the sign of -0
	}
	return d.CurrencySymbol + pricePrinter.Sprintf("%.0f", rounded)
}

// AuctionSchedule returns the auction date in the display timezone. The
// second result is false when the listing is not auctioned or the date
// cannot be read.
func (p *Property) AuctionSchedule() (string, bool) {
	if !p.IsAuctioned() {
		return "", false
	}
	at, ok := parseTimestamp(p.raw.AuctionDetails.DateTime.String())
	if !ok {
		return "", false
	}
	return at.In(p.env.display.Location).Format(DateTimeLayout), true
}

// AuctionVenue returns the labelled venue of an auctioned listing.
func (p *Property) AuctionVenue() string {
	d := p.env.display
	if !p.IsAuctioned() {
		return d.Placeholders.Venue
	}

	venue := p.raw.AuctionDetails.Venue.String()
	if !p.raw.AuctionDetails.Venue.Truthy() {
		venue = d.Placeholders.VenueTBA
	}
	return d.VenueLabel + venue
}

// OpenHomesPath returns the upstream path listing the open homes of a sale,
// or "" when the listing has no sale life.
func (p *Property) OpenHomesPath() string {
	if !p.raw.SaleLifeID.Truthy() {
		return ""
	}
	return fmt.Sprintf("/properties/%s/sale/%s/openHomes", p.raw.ID.String(), p.raw.SaleLifeID.String())
}

// OpenHouseSchedule returns the next open-home window, e.g.
// "25/05/2019 10:00 AM - 10:30 AM", looked up through the cached fetcher.
// Listings without a sale life, lookups that fail, and windows that are not
// in the future all yield the open-home placeholder.
func (p *Property) OpenHouseSchedule(ctx context.Context) string {
	d := p.env.display
	path := p.OpenHomesPath()
	if path == "" || p.env.fetcher == nil {
		return d.Placeholders.OpenHome
	}

	logger := p.env.logger.With().Str("listing_id", p.ID()).Str("path", path).Logger()

	body, err := p.env.fetcher.Get(ctx, path)
	if err != nil {
		logger.Warn().Err(err).Msg("Open homes lookup failed")
		return d.Placeholders.OpenHome
	}

	first, ok := firstOpenHome(body)
	if !ok {
		logger.Debug().Msg("No open home scheduled")
		return d.Placeholders.OpenHome
	}

	start, ok := parseTimestamp(first.Start.String())
	if !ok {
		return d.Placeholders.OpenHome
	}
	end, ok := parseTimestamp(first.End.String())
	if !ok {
		return d.Placeholders.OpenHome
	}

	now := p.env.clock.Now()
	if !start.Truncate(time.Minute).After(now.Truncate(time.Minute)) {
		return d.Placeholders.OpenHome
	}

	return start.In(d.Location).Format(DateTimeLayout) + " - " + end.In(d.Location).Format(TimeLayout)
}

type openHome struct {
	Start Value `json:"start"`
	End   Value `json:"end"`
}

// firstOpenHome returns the first entry of an open-homes response, which is
// either a JSON array or an object wrapping one under "items". The entry must
// carry both a start and an end.
func firstOpenHome(body []byte) (openHome, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var page struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return openHome{}, false
		}
		trimmed = page.Items
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil || len(entries) == 0 {
		return openHome{}, false
	}

	var first openHome
	if err := json.Unmarshal(entries[0], &first); err != nil {
		return openHome{}, false
	}
	if first.Start.IsNull() || first.End.IsNull() {
		return openHome{}, false
	}
	return first, true
}

// LargestThumbnail returns the last thumbnail of the first photo that has a
// url, that photo's url when it has no thumbnails, or the placeholder image.
func (p *Property) LargestThumbnail() string {
	for _, photo := range p.raw.Photos {
		if photo.URL == "" {
			continue
		}
		if n := len(photo.Thumbnails); n > 0 && photo.Thumbnails[n-1] != "" {
			return photo.Thumbnails[n-1]
		}
		return photo.URL
	}
	return p.env.display.Placeholders.Image
}

// Description returns the listing description with newlines replaced by the
// display line break.
func (p *Property) Description() string {
	return strings.ReplaceAll(p.raw.Description, "\n", p.env.display.LineBreak)
}
