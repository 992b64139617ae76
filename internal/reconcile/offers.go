package reconcile

import "context"

// Offer is one candidate streaming availability record.
type Offer struct {
	// Provider is the streaming package clear name (e.g. "Netflix").
	Provider string
	// Monetization is the offer kind (e.g. "FLATRATE", "FREE", "RENT").
	Monetization string
	// Seasons is the unit count for multi-unit content; zero for movies.
	Seasons int
}

// LookupOutcome classifies an availability lookup.
type LookupOutcome int

const (
	// LookupFound means the title matched and offers were returned.
	LookupFound LookupOutcome = iota
	// LookupNotFound means the provider had no match for the title.
	LookupNotFound
	// LookupFailed means the lookup could not complete (network, parse).
	LookupFailed
)

// LookupResult is the explicit outcome of one availability query. Both
// NotFound and Failed feed the same fail-open branch: no qualifying offers.
type LookupResult struct {
	Outcome LookupOutcome
	Offers  []Offer
	Err     error
}

// Found builds a successful lookup result.
func Found(offers []Offer) LookupResult {
	return LookupResult{Outcome: LookupFound, Offers: offers}
}

// NotFound builds a no-match lookup result.
func NotFound() LookupResult {
	return LookupResult{Outcome: LookupNotFound}
}

// Failed builds a transport-failure lookup result.
func Failed(err error) LookupResult {
	return LookupResult{Outcome: LookupFailed, Err: err}
}

// AvailabilityLookup queries streaming availability for a title in a
// region. Implementations must never propagate failures as fatal; they
// report them through the result instead.
type AvailabilityLookup interface {
	Search(ctx context.Context, title, region string) LookupResult
}

// OfferFilter selects offers matching the configured allow-lists and, for
// series, the exact non-special season count.
type OfferFilter struct {
	providers     map[string]struct{}
	monetizations map[string]struct{}
}

// NewOfferFilter builds a filter from the provider and monetization
// allow-lists.
func NewOfferFilter(providers, monetizations []string) OfferFilter {
	f := OfferFilter{
		providers:     make(map[string]struct{}, len(providers)),
		monetizations: make(map[string]struct{}, len(monetizations)),
	}
	for _, p := range providers {
		f.providers[p] = struct{}{}
	}
	for _, m := range monetizations {
		f.monetizations[m] = struct{}{}
	}
	return f
}

// Qualifying returns the offers that pass both allow-lists. For series
// the offer's unit count must equal the item's non-special season count
// exactly; partial-season availability never qualifies.
func (f OfferFilter) Qualifying(result LookupResult, item Item) []Offer {
	if result.Outcome != LookupFound {
		return nil
	}
	qualified := make([]Offer, 0, len(result.Offers))
	for _, offer := range result.Offers {
		if _, ok := f.monetizations[offer.Monetization]; !ok {
			continue
		}
		if _, ok := f.providers[offer.Provider]; !ok {
			continue
		}
		if item.IsSeries && offer.Seasons != item.Seasons {
			continue
		}
		qualified = append(qualified, offer)
	}
	return qualified
}

// Providers lists the distinct provider names across the given offers,
// preserving order of first appearance.
func Providers(offers []Offer) []string {
	names := make([]string, 0, len(offers))
	seen := make(map[string]struct{}, len(offers))
	for _, offer := range offers {
		if _, ok := seen[offer.Provider]; ok {
			continue
		}
		seen[offer.Provider] = struct{}{}
		names = append(names, offer.Provider)
	}
	return names
}
