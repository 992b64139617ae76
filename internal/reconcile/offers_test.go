package reconcile

import (
	"reflect"
	"testing"
)

func TestQualifyingAppliesBothAllowLists(t *testing.T) {
	filter := NewOfferFilter([]string{"Netflix"}, []string{"FLATRATE"})
	result := Found([]Offer{
		{Provider: "Netflix", Monetization: "FLATRATE"},
		{Provider: "Netflix", Monetization: "RENT"},
		{Provider: "Hulu", Monetization: "FLATRATE"},
	})

	offers := filter.Qualifying(result, Item{Title: "Alpha"})
	if len(offers) != 1 || offers[0].Provider != "Netflix" || offers[0].Monetization != "FLATRATE" {
		t.Fatalf("offers = %+v, want single Netflix FLATRATE", offers)
	}
}

func TestQualifyingIgnoresNonFoundResults(t *testing.T) {
	filter := NewOfferFilter([]string{"Netflix"}, []string{"FLATRATE"})
	if offers := filter.Qualifying(NotFound(), Item{}); len(offers) != 0 {
		t.Errorf("NotFound offers = %+v, want none", offers)
	}
	if offers := filter.Qualifying(Failed(errLookup), Item{}); len(offers) != 0 {
		t.Errorf("Failed offers = %+v, want none", offers)
	}
}

func TestQualifyingSeasonCountMustMatchExactly(t *testing.T) {
	filter := NewOfferFilter([]string{"Netflix"}, []string{"FLATRATE"})
	result := Found([]Offer{
		{Provider: "Netflix", Monetization: "FLATRATE", Seasons: 1},
		{Provider: "Netflix", Monetization: "FLATRATE", Seasons: 2},
		{Provider: "Netflix", Monetization: "FLATRATE", Seasons: 3},
	})

	offers := filter.Qualifying(result, Item{IsSeries: true, Seasons: 2})
	if len(offers) != 1 || offers[0].Seasons != 2 {
		t.Fatalf("offers = %+v, want the two-season offer only", offers)
	}
}

func TestQualifyingSpecialsOnlySeriesNeverMatchesCountedOffers(t *testing.T) {
	filter := NewOfferFilter([]string{"Netflix"}, []string{"FLATRATE"})
	result := Found([]Offer{
		{Provider: "Netflix", Monetization: "FLATRATE", Seasons: 3},
	})

	if offers := filter.Qualifying(result, Item{IsSeries: true, Seasons: 0}); len(offers) != 0 {
		t.Fatalf("offers = %+v, want none for a series with no non-special seasons", offers)
	}
	// The same count on a movie is not a unit count and must not gate.
	if offers := filter.Qualifying(result, Item{Seasons: 0}); len(offers) != 1 {
		t.Fatalf("offers = %+v, want the movie offer to qualify", offers)
	}
}

func TestProvidersDeduplicatesPreservingOrder(t *testing.T) {
	offers := []Offer{
		{Provider: "Hulu"},
		{Provider: "Netflix"},
		{Provider: "Hulu"},
	}
	if got, want := Providers(offers), []string{"Hulu", "Netflix"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Providers = %v, want %v", got, want)
	}
}
