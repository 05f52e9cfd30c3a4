// Package bdm implements the Bueno de Mesquita expected-utility model of
// bargaining over a single policy issue, in the variant formulated by
// Scholz. Actors with capability, salience, and a position on a
// one-dimensional issue scale exchange simulated offers (confrontation,
// compromise, capitulation) round by round until positions converge.
//
// The package is a pure numeric core: it takes parsed actor records and
// returns structured round results. Loading tabular data and rendering
// reports belong to the callers.
//
// Several quirks of Scholz' formulation are kept deliberately rather than
// corrected; they are called out where they occur. Replacing them would
// change published forecasts this implementation is checked against.
package bdm

import (
	"fmt"
	"math"
)

// TieBreak selects how a compromise offer is chosen when several are
// available to one actor.
type TieBreak int

const (
	// TieBreakScholz ranks compromise offers by the expected-utility
	// weighted midpoint of the two positions. This differs from the
	// distance key used for the other offer types; Scholz' code does it
	// this way even though the BDM papers describe least change.
	TieBreakScholz TieBreak = iota

	// TieBreakLeastChange ranks compromise offers by distance from the
	// actor's current position, the same key as confrontation and
	// capitulation.
	TieBreakLeastChange
)

// Model owns the actor set for a single simulation run.
type Model struct {
	actors []*Actor
	byName map[string]*Actor

	// q scales the utility of not challenging at all.
	q float64

	// positionRange is max-min over initial positions. It is fixed at
	// construction and never recomputed as positions move during rounds,
	// matching Scholz' code.
	positionRange float64

	tieBreak TieBreak
}

// ModelOption adjusts model construction.
type ModelOption func(*Model)

// WithStatusQuoWeight sets q, the weight on the status-quo utility term.
func WithStatusQuoWeight(q float64) ModelOption {
	return func(m *Model) { m.q = q }
}

// WithCompromiseTieBreak selects the compromise ranking key.
func WithCompromiseTieBreak(tb TieBreak) ModelOption {
	return func(m *Model) { m.tieBreak = tb }
}

// NewModel builds a Model from already-parsed actors. The actor slice is
// used directly; positions and risk aversions mutate in place as rounds
// run.
func NewModel(actors []*Actor, opts ...ModelOption) (*Model, error) {
	m := &Model{
		actors:   actors,
		byName:   make(map[string]*Actor, len(actors)),
		q:        1.0,
		tieBreak: TieBreakScholz,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.q < 0 {
		return nil, fmt.Errorf("%w: status-quo weight %g is negative", ErrInvalidConfig, m.q)
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, a := range actors {
		if _, dup := m.byName[a.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate actor %q", ErrInvalidConfig, a.Name)
		}
		m.byName[a.Name] = a
		min = math.Min(min, a.Position)
		max = math.Max(max, a.Position)
	}

	m.positionRange = max - min
	if len(actors) < 2 || m.positionRange == 0 {
		return nil, fmt.Errorf("%w: need at least two distinct positions", ErrInvalidConfig)
	}
	return m, nil
}

// NewModelFromRecords parses raw records and builds a Model.
func NewModelFromRecords(records []ActorRecord, opts ...ModelOption) (*Model, error) {
	actors := make([]*Actor, 0, len(records))
	for i, rec := range records {
		a, err := ParseActor(rec, i)
		if err != nil {
			return nil, err
		}
		actors = append(actors, a)
	}
	return NewModel(actors, opts...)
}

// Actors returns the model's actors in input order.
func (m *Model) Actors() []*Actor { return m.actors }

// ActorByName returns the named actor, or nil.
func (m *Model) ActorByName(name string) *Actor { return m.byName[name] }

// PositionRange returns the fixed issue-scale range.
func (m *Model) PositionRange() float64 { return m.positionRange }

// StatusQuoWeight returns q.
func (m *Model) StatusQuoWeight() float64 { return m.q }

// Compare is the signed utility difference to actor a of position xJ over
// position xK, under the given risk exponent: positive means a prefers xJ.
// This is the atomic vote primitive behind both the median sweep and the
// conflict-probability estimator.
func (m *Model) Compare(a *Actor, xJ, xK, risk float64) float64 {
	dK := math.Pow(math.Abs(a.Position-xK)/m.positionRange, risk)
	dJ := math.Pow(math.Abs(a.Position-xJ)/m.positionRange, risk)
	return a.Capability * a.Salience * (dK - dJ)
}

// USuccess is the utility to a of successfully imposing position xJ by
// force. Zero at a's own position, 2 at maximal distance (risk 1).
func (m *Model) USuccess(a *Actor, xJ, risk float64) float64 {
	return 2 - 4*math.Pow(0.5-0.5*math.Abs(a.Position-xJ)/m.positionRange, risk)
}

// UFailure mirrors USuccess with the distance term's sign flipped:
// zero at a's own position, -2 at maximal distance (risk 1).
func (m *Model) UFailure(a *Actor, xJ, risk float64) float64 {
	return 2 - 4*math.Pow(0.5+0.5*math.Abs(a.Position-xJ)/m.positionRange, risk)
}

// UStatusQuo is the utility of not challenging at all. It depends only on
// the risk exponent.
func (m *Model) UStatusQuo(risk float64) float64 {
	return 2 - 4*math.Pow(0.5, risk)
}

// Probability estimates the chance that a challenger at xI prevails over
// an incumbent at xJ. Same positions mean no conflict: 0.
//
// The denominator sums every actor's vote over every ordered pair of
// actor positions, an O(n^3) normalization recomputed per call. Scholz
// normalizes this way rather than over the single pair, which keeps the
// resulting probabilities small on typical datasets; both drafts of his
// code agree on it, so it stays.
func (m *Model) Probability(xI, xJ float64) float64 {
	if xI == xJ {
		return 0.0
	}

	var denom float64
	for _, a := range m.actors {
		for _, a1 := range m.actors {
			for _, a2 := range m.actors {
				denom += math.Abs(m.Compare(a, a1.Position, a2.Position, a.RiskAversion))
			}
		}
	}
	if denom == 0 {
		// Every actor is indifferent between every pair of positions;
		// only possible on degenerate data (all capability*salience zero).
		return 0.0
	}

	var num float64
	for _, a := range m.actors {
		if v := m.Compare(a, xI, xJ, a.RiskAversion); v > 0 {
			num += v
		}
	}
	return num / denom
}

// EUChallenge is the expected utility to actorI of challenging actorJ,
// evaluated under actorI's own risk aversion.
func (m *Model) EUChallenge(actorI, actorJ *Actor) float64 {
	return m.euChallenge(actorI, actorJ, actorI.RiskAversion)
}

// EUChallengeFrom evaluates actorI's challenge of actorJ under the
// perspective actor's risk aversion. Scholz assesses both directions of a
// pair from the receiving actor's risk stance; offer generation depends
// on that, so the asymmetry is part of the contract.
func (m *Model) EUChallengeFrom(actorI, actorJ, perspective *Actor) float64 {
	return m.euChallenge(actorI, actorJ, perspective.RiskAversion)
}

func (m *Model) euChallenge(actorI, actorJ *Actor, risk float64) float64 {
	p := m.Probability(actorI.Position, actorJ.Position)
	uSuccess := m.USuccess(actorI, actorJ.Position, risk)
	uFailure := m.UFailure(actorI, actorJ.Position, risk)

	euResist := actorJ.Salience * (p*uSuccess + (1-p)*uFailure)
	euNotResist := (1 - actorJ.Salience) * uSuccess
	return euResist + euNotResist - m.q*m.UStatusQuo(risk)
}

// DangerLevel aggregates how attractive a is to challenge: the sum over
// every other actor j of j's expected utility of challenging a, each
// viewed from j's own risk stance.
func (m *Model) DangerLevel(a *Actor) float64 {
	var sum float64
	for _, other := range m.actors {
		if other == a {
			continue
		}
		sum += m.EUChallenge(other, a)
	}
	return sum
}

// RiskAcceptance normalizes a's danger level into [-1,1] against the
// minimum and maximum danger across all actors. Fails with
// ErrDegenerateDanger when the danger profile is flat.
func (m *Model) RiskAcceptance(a *Actor) (float64, error) {
	dangers := m.dangerLevels()
	return riskAcceptance(dangers, m.indexOf(a))
}

// RiskAversionFor derives a's fresh risk-aversion coefficient from its
// risk acceptance via the standard BDM transform (1-x/3)/(1+x/3),
// mapping [-1,1] onto [0.5,2].
func (m *Model) RiskAversionFor(a *Actor) (float64, error) {
	acceptance, err := m.RiskAcceptance(a)
	if err != nil {
		return 0, err
	}
	return riskAversionTransform(acceptance), nil
}

func (m *Model) dangerLevels() []float64 {
	dangers := make([]float64, len(m.actors))
	for i, a := range m.actors {
		dangers[i] = m.DangerLevel(a)
	}
	return dangers
}

func (m *Model) indexOf(a *Actor) int {
	for i, other := range m.actors {
		if other == a {
			return i
		}
	}
	return -1
}

func riskAcceptance(dangers []float64, idx int) (float64, error) {
	min, max := dangers[0], dangers[0]
	for _, d := range dangers[1:] {
		min = math.Min(min, d)
		max = math.Max(max, d)
	}
	if max == min {
		return 0, ErrDegenerateDanger
	}
	return (2*dangers[idx] - max - min) / (max - min), nil
}

func riskAversionTransform(acceptance float64) float64 {
	return (1 - acceptance/3) / (1 + acceptance/3)
}

// MedianPosition is the Condorcet-style median: sweep the distinct
// positions in input order and adopt a position whenever the
// capability-salience weighted votes favor it over the incumbent median.
// Votes use a fixed risk of 1 regardless of each actor's current
// coefficient.
func (m *Model) MedianPosition() float64 {
	positions := m.distinctPositions()
	median := positions[0]
	for _, pos := range positions[1:] {
		var votes float64
		for _, a := range m.actors {
			votes += m.Compare(a, pos, median, NeutralRisk)
		}
		if votes > 0 {
			median = pos
		}
	}
	return median
}

// MeanPosition is the capability-salience weighted mean position.
func (m *Model) MeanPosition() float64 {
	var top, bottom float64
	for _, a := range m.actors {
		w := a.Capability * a.Salience
		top += w * a.Position
		bottom += w
	}
	return top / bottom
}

func (m *Model) distinctPositions() []float64 {
	seen := make(map[float64]bool, len(m.actors))
	var positions []float64
	for _, a := range m.actors {
		if !seen[a.Position] {
			seen[a.Position] = true
			positions = append(positions, a.Position)
		}
	}
	return positions
}
