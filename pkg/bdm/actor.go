package bdm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Actor is a participant bargaining over a single one-dimensional issue.
type Actor struct {
	Name         string
	Capability   float64 // relative power, nominally in [0,1]
	Salience     float64 // importance of the issue to this actor
	Position     float64 // location on the issue scale; mutates across rounds
	RiskAversion float64 // utility curvature exponent, nominally in [0.5,2]
}

// NeutralRisk is the risk-aversion coefficient every actor starts each
// round's danger assessment with.
const NeutralRisk = 1.0

// ActorRecord is the raw string-typed input row an Actor is built from.
// The numeric fields must parse as real numbers; Capability and Salience
// must be nonnegative. Salience values above 1 are accepted: some source
// datasets scale salience to 0-100 rather than 0-1.
type ActorRecord struct {
	Actor      string
	Capability string
	Salience   string
	Position   string
}

// ParseActor converts a raw record into an Actor with neutral risk.
// The index identifies the record in error messages.
func ParseActor(rec ActorRecord, index int) (*Actor, error) {
	name := strings.TrimSpace(rec.Actor)
	if name == "" {
		return nil, &RecordError{Index: index, Field: "Actor", Message: "missing actor name"}
	}

	c, err := parseField(rec.Capability)
	if err != nil {
		return nil, &RecordError{Index: index, Name: name, Field: "Capability", Message: err.Error()}
	}
	if c < 0 {
		return nil, &RecordError{Index: index, Name: name, Field: "Capability", Message: "must be nonnegative"}
	}

	s, err := parseField(rec.Salience)
	if err != nil {
		return nil, &RecordError{Index: index, Name: name, Field: "Salience", Message: err.Error()}
	}
	if s < 0 {
		return nil, &RecordError{Index: index, Name: name, Field: "Salience", Message: "must be nonnegative"}
	}

	x, err := parseField(rec.Position)
	if err != nil {
		return nil, &RecordError{Index: index, Name: name, Field: "Position", Message: err.Error()}
	}

	return &Actor{
		Name:         name,
		Capability:   c,
		Salience:     s,
		Position:     x,
		RiskAversion: NeutralRisk,
	}, nil
}

func parseField(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("missing value")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", raw)
	}
	return v, nil
}

// String renders the actor in the compact form used by round reports.
func (a *Actor) String() string {
	return fmt.Sprintf("%s(x=%g,c=%g,s=%g,r=%.2f)", a.Name, a.Position, a.Capability, a.Salience, a.RiskAversion)
}
