package bdm

import "fmt"

// OfferRecord is the value snapshot of an accepted offer, suitable for
// reporting and serialization outside the package.
type OfferRecord struct {
	Actor       string    `json:"actor"`       // receiving actor
	OtherActor  string    `json:"other_actor"` // proposing actor
	Type        OfferType `json:"type"`
	EU          float64   `json:"eu"`
	OtherEU     float64   `json:"other_eu"`
	NewPosition float64   `json:"new_position"`
}

// RoundResult captures one bargaining round: the offers actors accepted
// and the positions after the simultaneous commit.
type RoundResult struct {
	Round         int                `json:"round"`
	Offers        []OfferRecord      `json:"offers"`
	Median        float64            `json:"median"`
	Mean          float64            `json:"mean"`
	Positions     map[string]float64 `json:"positions"`
	RiskAversions map[string]float64 `json:"risk_aversions"`
}

// RunResult is the structured outcome of a full simulation run.
type RunResult struct {
	InitialMedian float64       `json:"initial_median"`
	InitialMean   float64       `json:"initial_mean"`
	Rounds        []RoundResult `json:"rounds"`
}

// UpdateRiskAversions recomputes every actor's risk-aversion coefficient
// from its relative danger level. All coefficients are first reset to
// neutral so danger is assessed from a common stance, every new value is
// derived from that snapshot, and only then are the updates committed.
// Interleaving a write before all reads complete would corrupt the
// shared normalization.
func (m *Model) UpdateRiskAversions() error {
	for _, a := range m.actors {
		a.RiskAversion = NeutralRisk
	}

	dangers := m.dangerLevels()
	updated := make([]float64, len(m.actors))
	for i := range m.actors {
		acceptance, err := riskAcceptance(dangers, i)
		if err != nil {
			return fmt.Errorf("update risk aversions: %w", err)
		}
		updated[i] = riskAversionTransform(acceptance)
	}

	for i, a := range m.actors {
		a.RiskAversion = updated[i]
	}
	return nil
}

// UpdatePositions runs the offer phase: every actor evaluates all other
// actors from its pre-round position, selects its best offer, and all
// position updates are applied together at the end. Returns the accepted
// offers in actor order.
func (m *Model) UpdatePositions() []OfferRecord {
	best := make([]*Offer, len(m.actors))
	for i, a := range m.actors {
		best[i] = m.BestOffer(a)
	}

	var accepted []OfferRecord
	for i, a := range m.actors {
		o := best[i]
		if o == nil {
			continue
		}
		accepted = append(accepted, OfferRecord{
			Actor:       o.Actor.Name,
			OtherActor:  o.OtherActor.Name,
			Type:        o.Type,
			EU:          o.EU,
			OtherEU:     o.OtherEU,
			NewPosition: o.Position,
		})
		a.Position = o.Position
	}
	return accepted
}

// Run executes rounds bargaining rounds and returns the structured
// results. rounds may be zero, in which case only the initial median and
// mean are reported. A degenerate danger profile aborts the run; carrying
// on would produce mathematically meaningless positions.
func (m *Model) Run(rounds int) (*RunResult, error) {
	if rounds < 0 {
		return nil, fmt.Errorf("%w: negative round count %d", ErrInvalidConfig, rounds)
	}

	result := &RunResult{
		InitialMedian: m.MedianPosition(),
		InitialMean:   m.MeanPosition(),
	}

	for round := 1; round <= rounds; round++ {
		if err := m.UpdateRiskAversions(); err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		offers := m.UpdatePositions()

		rr := RoundResult{
			Round:         round,
			Offers:        offers,
			Median:        m.MedianPosition(),
			Mean:          m.MeanPosition(),
			Positions:     make(map[string]float64, len(m.actors)),
			RiskAversions: make(map[string]float64, len(m.actors)),
		}
		for _, a := range m.actors {
			rr.Positions[a.Name] = a.Position
			rr.RiskAversions[a.Name] = a.RiskAversion
		}
		result.Rounds = append(result.Rounds, rr)
	}
	return result, nil
}
