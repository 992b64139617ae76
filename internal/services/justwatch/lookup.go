package justwatch

import (
	"context"
	"errors"

	"justwatcharr/internal/reconcile"
)

// Lookup adapts a JustWatch client to the engine's availability interface,
// translating errors into explicit outcomes instead of propagating them.
type Lookup struct {
	client *Client
}

// NewLookup wraps a JustWatch client for reconciliation.
func NewLookup(client *Client) *Lookup {
	return &Lookup{client: client}
}

// Search queries availability for a title. A missing match reports
// NotFound; any other failure reports Failed. Both feed the engine's
// fail-open branch.
func (l *Lookup) Search(ctx context.Context, title, region string) reconcile.LookupResult {
	match, err := l.client.Search(ctx, title, region)
	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			return reconcile.NotFound()
		}
		return reconcile.Failed(err)
	}
	offers := make([]reconcile.Offer, 0, len(match.Offers))
	for _, offer := range match.Offers {
		offers = append(offers, reconcile.Offer{
			Provider:     offer.Package,
			Monetization: offer.Monetization,
			Seasons:      offer.ElementCount,
		})
	}
	return reconcile.Found(offers)
}
