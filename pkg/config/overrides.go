package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/vaultre-client/pkg/listing"
)

// priceOverridesFile is the YAML layout of PRICE_OVERRIDES_FILE:
//
//	price_overrides:
//	  - address: '"Orange Grove" 898 Orange Grove Road, Gunnedah NSW'
//	    text: Expressions of Interest
//	  - address: Gunnedah NSW
//	    match: contains
//	    text: Contact agent
type priceOverridesFile struct {
	PriceOverrides []listing.PriceOverride `yaml:"price_overrides" validate:"dive"`
}

// LoadPriceOverrides reads price overrides from a YAML file. An empty list is
// valid and disables overrides.
func LoadPriceOverrides(path string) ([]listing.PriceOverride, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price overrides file: %w", err)
	}
	defer file.Close()

	var cfg priceOverridesFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode price overrides: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("price overrides validation failed: %w", err)
	}

	if cfg.PriceOverrides == nil {
		cfg.PriceOverrides = []listing.PriceOverride{}
	}
	return cfg.PriceOverrides, nil
}
