package listing

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fetcher returns the body for an upstream request path. *cache.Fetcher
// satisfies it.
type Fetcher interface {
	Get(ctx context.Context, identifier string) ([]byte, error)
}

// Params are caller-supplied query options. They override the defaults of
// the listing category they are passed to.
type Params map[string]string

// category describes one VaultRE listing feed.
type category struct {
	path     string
	defaults Params

	// excluded statuses are dropped from results.
	excluded map[string]bool

	// requireAvailable drops listings not flagged available.
	requireAvailable bool
}

func statuses(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func portalDefaults() Params {
	return Params{
		"sort":               "inserted",
		"sortOrder":          "desc",
		"publishedOnPortals": "1",
	}
}

var (
	residentialSale = category{
		path:     "/properties/residential/sale",
		defaults: portalDefaults(),
		excluded: statuses("appraisal", "prospect", "unconditional"),
	}
	residentialLease = category{
		path:             "/properties/residential/lease",
		defaults:         portalDefaults(),
		excluded:         statuses("appraisal", "prospect"),
		requireAvailable: true,
	}
	ruralSale = category{
		path:     "/properties/rural/sale",
		defaults: portalDefaults(),
		excluded: statuses("appraisal", "prospect", "unconditional"),
	}
	ruralSold = category{
		path:     "/properties/rural/sale/sold",
		excluded: statuses("appraisal", "prospect"),
	}
)

// detailKeys are the attributes templates render in a listing's detail row.
var detailKeys = []string{"bed", "bath", "garages"}

// RepositoryConfig configures a Repository.
type RepositoryConfig struct {
	// Display controls derived fields. Unset fields use DefaultDisplay.
	Display Display

	// Clock decides whether an open home lies in the future.
	Clock clock.Clock

	// Logger defaults to the global logger.
	Logger *zerolog.Logger
}

// Repository lists and retrieves VaultRE listings as Property values.
type Repository struct {
	fetcher Fetcher
	env     *env
	logger  zerolog.Logger
}

// NewRepository creates a repository reading through fetcher.
func NewRepository(fetcher Fetcher, cfg RepositoryConfig) *Repository {
	if fetcher == nil {
		panic("listing fetcher cannot be nil")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	logger := log.With().Str("component", "listing").Logger()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Repository{
		fetcher: fetcher,
		env: &env{
			display: cfg.Display.withDefaults(),
			fetcher: fetcher,
			clock:   cfg.Clock,
			logger:  logger,
		},
		logger: logger,
	}
}

// Display returns the effective display settings.
func (r *Repository) Display() Display {
	return r.env.display
}

// DetailKeys returns the attribute names shown in a listing's detail row.
func (r *Repository) DetailKeys() []string {
	keys := make([]string, len(detailKeys))
	copy(keys, detailKeys)
	return keys
}

// Residential lists residential properties for sale.
func (r *Repository) Residential(ctx context.Context, params Params) ([]*Property, error) {
	return r.list(ctx, residentialSale, params)
}

// ResidentialsForLease lists available residential properties for lease.
func (r *Repository) ResidentialsForLease(ctx context.Context, params Params) ([]*Property, error) {
	return r.list(ctx, residentialLease, params)
}

// ResidentialProperty returns one residential property for sale.
func (r *Repository) ResidentialProperty(ctx context.Context, id string) (*Property, error) {
	return r.get(ctx, residentialSale.path+"/"+url.PathEscape(id))
}

// ResidentialForLease returns one residential property for lease.
func (r *Repository) ResidentialForLease(ctx context.Context, id string) (*Property, error) {
	return r.get(ctx, residentialLease.path+"/"+url.PathEscape(id))
}

// Rural lists rural properties for sale.
func (r *Repository) Rural(ctx context.Context, params Params) ([]*Property, error) {
	return r.list(ctx, ruralSale, params)
}

// RuralSold lists sold rural properties.
func (r *Repository) RuralSold(ctx context.Context, params Params) ([]*Property, error) {
	return r.list(ctx, ruralSold, params)
}

// RuralProperty returns one rural property for sale.
func (r *Repository) RuralProperty(ctx context.Context, id string) (*Property, error) {
	return r.get(ctx, ruralSale.path+"/"+url.PathEscape(id))
}

// listPath builds the request identifier for a category. Keys are sorted, so
// equal option sets share a cache entry.
func listPath(c category, params Params) string {
	query := url.Values{}
	for k, v := range c.defaults {
		query.Set(k, v)
	}
	for k, v := range params {
		query.Set(k, v)
	}
	return c.path + "?" + query.Encode()
}

func (r *Repository) list(ctx context.Context, c category, params Params) ([]*Property, error) {
	path := listPath(c, params)

	body, err := r.fetcher.Get(ctx, path)
	if err != nil {
		r.logger.Error().Err(err).Str("path", path).Msg("Listing request failed")
		return nil, err
	}

	var page struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		r.logger.Warn().Err(err).Str("path", path).Msg("Malformed listing response")
		return []*Property{}, nil
	}

	properties := make([]*Property, 0, len(page.Items))
	for i, item := range page.Items {
		var raw RawListing
		if err := json.Unmarshal(item, &raw); err != nil {
			r.logger.Warn().Err(err).Str("path", path).Int("index", i).Msg("Skipping malformed listing")
			continue
		}
		if c.excluded[raw.Status] {
			continue
		}
		if c.requireAvailable && !raw.Available {
			continue
		}
		properties = append(properties, &Property{raw: raw, env: r.env})
	}

	r.logger.Debug().
		Str("path", path).
		Int("received", len(page.Items)).
		Int("kept", len(properties)).
		Msg("Listings loaded")

	return properties, nil
}

func (r *Repository) get(ctx context.Context, path string) (*Property, error) {
	body, err := r.fetcher.Get(ctx, path)
	if err != nil {
		r.logger.Error().Err(err).Str("path", path).Msg("Listing request failed")
		return nil, err
	}

	var raw RawListing
	if err := json.Unmarshal(body, &raw); err != nil {
		r.logger.Warn().Err(err).Str("path", path).Msg("Malformed listing response")
		raw = RawListing{}
	}
	return &Property{raw: raw, env: r.env}, nil
}
