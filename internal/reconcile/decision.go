package reconcile

// Decision is the outcome of evaluating one item. It is derived per pass
// and never persisted.
type Decision int

const (
	// NoAction means the item's state already matches its availability.
	NoAction Decision = iota
	// DemoteAndPurge means the item is streamable on an approved service:
	// unmonitor it and delete its local files.
	DemoteAndPurge
	// Promote means the item is not streamable anywhere approved and not
	// owned locally: start monitoring it.
	Promote
)

func (d Decision) String() string {
	switch d {
	case DemoteAndPurge:
		return "demote"
	case Promote:
		return "promote"
	default:
		return "no action"
	}
}

// Evaluate runs the decision state machine for one item against a lookup
// result. The lookup must have been performed in the region matching the
// item's branch; callers use Branch to pick it.
//
// Fail-open rule: a failed or empty lookup counts as "no qualifying
// offers", so acquired items stay untouched and unowned items get
// monitored. Losing a lookup must never cause silent loss of access.
func Evaluate(item Item, filter OfferFilter, result LookupResult) (Decision, []Offer) {
	offers := filter.Qualifying(result, item)
	if item.Acquired() {
		if len(offers) > 0 {
			return DemoteAndPurge, offers
		}
		return NoAction, nil
	}
	if len(offers) == 0 {
		return Promote, nil
	}
	return NoAction, offers
}

// Excluded reports whether the exclusion gate removes the item from
// reconciliation entirely: unreleased, or carrying the exclusion tag.
func Excluded(item Item, excludeTag string) bool {
	return !item.Released || item.HasTag(excludeTag)
}
