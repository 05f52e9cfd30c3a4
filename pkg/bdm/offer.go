package bdm

import "math"

// OfferType classifies the outcome of a pairwise challenge assessment.
type OfferType string

const (
	Confrontation OfferType = "confrontation"
	Compromise    OfferType = "compromise"
	Capitulation  OfferType = "capitulation"
	Stalemate     OfferType = "stalemate"
)

// Offer is a proposed new position for the receiving actor, produced and
// discarded within a single round.
type Offer struct {
	Actor      *Actor // actor receiving the offer
	OtherActor *Actor // actor proposing the offer
	Type       OfferType
	EU         float64 // receiving actor's expected utility of challenging
	OtherEU    float64 // proposer's expected utility of challenging back
	Position   float64 // policy position implied by the offer
}

// offerBetween assesses the ordered pair (actor, other), both directions
// evaluated under the receiving actor's risk stance. Callers must skip
// same-position pairs; a challenge between equal positions is meaningless.
func (m *Model) offerBetween(actor, other *Actor) Offer {
	euIJ := m.EUChallenge(actor, other)
	euJI := m.EUChallengeFrom(other, actor, actor)

	o := Offer{Actor: actor, OtherActor: other, EU: euIJ, OtherEU: euJI}
	switch {
	case euJI > euIJ && euIJ > 0:
		o.Type = Confrontation
		o.Position = other.Position
	case euJI > 0 && 0 > euIJ && euJI > math.Abs(euIJ):
		o.Type = Compromise
		o.Position = actor.Position + (other.Position-actor.Position)*math.Abs(euIJ/euJI)
	case euJI > 0 && 0 > euIJ && euJI < math.Abs(euJI):
		// Scholz compares euJI against its own absolute value here, so the
		// branch never fires under the euJI > 0 guard. Kept literally: a
		// "corrected" capitulation test changes which datasets converge.
		o.Type = Capitulation
		o.Position = other.Position
	default:
		o.Type = Stalemate
		o.Position = other.Position
	}
	return o
}

// BestOffer collects the offers made to a this round and reduces them to
// the one a accepts, or nil when every pair is a stalemate.
func (m *Model) BestOffer(a *Actor) *Offer {
	buckets := make(map[OfferType][]Offer, 3)
	for _, other := range m.actors {
		if a.Position == other.Position {
			continue
		}
		o := m.offerBetween(a, other)
		if o.Type == Stalemate {
			continue
		}
		buckets[o.Type] = append(buckets[o.Type], o)
	}
	return m.selectBestOffer(a, buckets)
}

// selectBestOffer reduces the offer buckets to a single accepted offer.
// Buckets are strictly ordered: any confrontation beats every compromise,
// any compromise beats every capitulation, regardless of utility
// magnitudes.
func (m *Model) selectBestOffer(a *Actor, buckets map[OfferType][]Offer) *Offer {
	switch {
	case len(buckets[Confrontation]) > 0:
		return minOffer(buckets[Confrontation], m.distanceKey(a))
	case len(buckets[Compromise]) > 0:
		return minOffer(buckets[Compromise], m.compromiseKey(a))
	case len(buckets[Capitulation]) > 0:
		return minOffer(buckets[Capitulation], m.distanceKey(a))
	}
	return nil
}

// distanceKey ranks offers by how far they move the actor.
func (m *Model) distanceKey(a *Actor) func(Offer) float64 {
	return func(o Offer) float64 {
		return math.Abs(a.Position - o.Position)
	}
}

// compromiseKey ranks compromise offers. Scholz ranks them by the
// utility-weighted midpoint of the two actors' positions rather than by
// distance moved, which can pick an extreme compromise over a nearby one.
// TieBreakLeastChange switches to the distance key instead.
func (m *Model) compromiseKey(a *Actor) func(Offer) float64 {
	if m.tieBreak == TieBreakLeastChange {
		return m.distanceKey(a)
	}
	return func(o Offer) float64 {
		top := math.Abs(o.EU)*o.Actor.Position + math.Abs(o.OtherEU)*o.OtherActor.Position
		return top / (math.Abs(o.EU) + math.Abs(o.OtherEU))
	}
}

// minOffer picks the offer with the smallest key, first wins ties.
func minOffer(offers []Offer, key func(Offer) float64) *Offer {
	best := &offers[0]
	bestKey := key(offers[0])
	for i := 1; i < len(offers); i++ {
		if k := key(offers[i]); k < bestKey {
			best = &offers[i]
			bestKey = k
		}
	}
	return best
}
