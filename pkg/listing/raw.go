package listing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Photo is one entry of a listing's photo sequence.
type Photo struct {
	URL string

	// Thumbnails in upstream order, smallest first.
	Thumbnails []string
}

// AuctionDetails holds the auction fields of a listing.
type AuctionDetails struct {
	DateTime Value
	Venue    Value
}

// RawListing is one property record as returned by VaultRE.
//
// Decoding is lenient: a field with an unexpected JSON type decodes to its
// zero value instead of rejecting the record. Every top-level attribute stays
// reachable through Attr.
type RawListing struct {
	ID             Value
	Status         string
	Available      bool
	SearchPrice    Value
	DisplayPrice   Value
	DisplayAddress string
	Description    string
	Photos         []Photo
	AuctionDetails *AuctionDetails
	SaleLifeID     Value

	fields map[string]json.RawMessage
}

// ErrNotObject is returned when a listing is not a JSON object.
var ErrNotObject = errors.New("listing is not a JSON object")

// UnmarshalJSON implements json.Unmarshaler. It fails only when data is not a
// JSON object.
func (l *RawListing) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if fields == nil {
		return ErrNotObject
	}

	*l = RawListing{
		ID:             decodeValue(fields["id"]),
		Status:         decodeValue(fields["status"]).String(),
		Available:      decodeValue(fields["available"]).Truthy(),
		SearchPrice:    decodeValue(fields["searchPrice"]),
		DisplayPrice:   decodeValue(fields["displayPrice"]),
		DisplayAddress: decodeValue(fields["displayAddress"]).String(),
		Description:    decodeValue(fields["description"]).String(),
		Photos:         decodePhotos(fields["photos"]),
		AuctionDetails: decodeAuctionDetails(fields["auctionDetails"]),
		SaleLifeID:     decodeValue(fields["saleLifeId"]),
		fields:         fields,
	}
	return nil
}

// MarshalJSON returns the record as received.
func (l RawListing) MarshalJSON() ([]byte, error) {
	if l.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(l.fields)
}

// Attr returns a top-level attribute by its upstream name.
func (l *RawListing) Attr(name string) Value {
	return decodeValue(l.fields[name])
}

// Has reports whether the upstream record carried the attribute at all.
func (l *RawListing) Has(name string) bool {
	_, ok := l.fields[name]
	return ok
}

func decodePhotos(raw json.RawMessage) []Photo {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	photos := make([]Photo, 0, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			photos = append(photos, Photo{})
			continue
		}

		photo := Photo{URL: decodeValue(fields["url"]).String()}
		for _, thumb := range orderedValues(fields["thumbnails"]) {
			photo.Thumbnails = append(photo.Thumbnails, decodeValue(thumb).String())
		}
		photos = append(photos, photo)
	}
	return photos
}

func decodeAuctionDetails(raw json.RawMessage) *AuctionDetails {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil
	}
	return &AuctionDetails{
		DateTime: decodeValue(fields["dateTime"]),
		Venue:    decodeValue(fields["venue"]),
	}
}

// orderedValues returns the elements of a JSON array, or the values of a JSON
// object in document order. Anything else yields nil.
func orderedValues(raw json.RawMessage) []json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil
		}
		return items
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil {
			return nil
		}
		var values []json.RawMessage
		for dec.More() {
			if _, err := dec.Token(); err != nil {
				return nil
			}
			var v json.RawMessage
			if err := dec.Decode(&v); err != nil {
				return nil
			}
			values = append(values, v)
		}
		return values
	default:
		return nil
	}
}
