package listing

import "context"

// View is the JSON shape of a Property as served to templates.
type View struct {
	ID                string           `json:"id"`
	Status            string           `json:"status,omitempty"`
	Address           string           `json:"displayAddress"`
	Price             string           `json:"price"`
	IsAuctioned       bool             `json:"isAuctioned"`
	AuctionSchedule   *string          `json:"auctionSchedule"`
	AuctionVenue      string           `json:"auctionVenue"`
	OpenHouseSchedule string           `json:"openHouseSchedule"`
	LargestThumbnail  string           `json:"largestThumbnail"`
	Description       string           `json:"description"`
	Details           map[string]Value `json:"details"`
}

// View derives every display field of p. The open-house lookup may perform a
// cached upstream request.
func (p *Property) View(ctx context.Context, detailKeys []string) View {
	v := View{
		ID:                p.ID(),
		Status:            p.Status(),
		Address:           p.Address(),
		Price:             p.Price(),
		IsAuctioned:       p.IsAuctioned(),
		AuctionVenue:      p.AuctionVenue(),
		OpenHouseSchedule: p.OpenHouseSchedule(ctx),
		LargestThumbnail:  p.LargestThumbnail(),
		Description:       p.Description(),
		Details:           make(map[string]Value, len(detailKeys)),
	}
	if schedule, ok := p.AuctionSchedule(); ok {
		v.AuctionSchedule = &schedule
	}
	for _, key := range detailKeys {
		v.Details[key] = p.Attr(key)
	}
	return v
}
