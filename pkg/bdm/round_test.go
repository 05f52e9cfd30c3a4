package bdm

import (
	"errors"
	"testing"
)

func TestUpdateRiskAversions(t *testing.T) {
	m := threeActorModel(t)
	if err := m.UpdateRiskAversions(); err != nil {
		t.Fatalf("UpdateRiskAversions: %v", err)
	}

	// B carries the highest danger (acceptance 1 -> 0.5), C the lowest
	// (acceptance -1 -> 2), A lands at acceptance ~0.9487.
	want := map[string]float64{
		"A": 0.5194770152603789,
		"B": 0.5,
		"C": 2.0,
	}
	for name, w := range want {
		got := m.ActorByName(name).RiskAversion
		if !almostEqual(got, w, 1e-5) {
			t.Errorf("risk aversion of %s = %.10f, want %.10f", name, got, w)
		}
	}
}

func TestUpdateRiskAversionsResetsToNeutral(t *testing.T) {
	m := threeActorModel(t)

	// Skewed starting coefficients must not leak into the danger
	// assessment: every actor is reset to neutral before danger levels
	// are read, so the results match a fresh model.
	m.ActorByName("A").RiskAversion = 1.7
	m.ActorByName("B").RiskAversion = 0.6
	m.ActorByName("C").RiskAversion = 1.9
	if err := m.UpdateRiskAversions(); err != nil {
		t.Fatalf("UpdateRiskAversions: %v", err)
	}

	fresh := threeActorModel(t)
	if err := fresh.UpdateRiskAversions(); err != nil {
		t.Fatalf("UpdateRiskAversions (fresh): %v", err)
	}
	for _, a := range m.Actors() {
		want := fresh.ActorByName(a.Name).RiskAversion
		if !almostEqual(a.RiskAversion, want, tol) {
			t.Errorf("risk aversion of %s = %.10f, want %.10f", a.Name, a.RiskAversion, want)
		}
	}
}

func TestUpdateRiskAversionsDegenerate(t *testing.T) {
	m := twoActorModel(t)
	// A symmetric pair has identical danger levels; normalization has no
	// spread to work with.
	err := m.UpdateRiskAversions()
	if !errors.Is(err, ErrDegenerateDanger) {
		t.Fatalf("err = %v, want ErrDegenerateDanger", err)
	}
}

func TestUpdatePositions(t *testing.T) {
	m := threeActorModel(t)
	offers := m.UpdatePositions()

	// Only B receives a viable offer: a confrontation from A pulling B to
	// A's position. A and C stalemate with everyone.
	if len(offers) != 1 {
		t.Fatalf("accepted offers = %d, want 1: %+v", len(offers), offers)
	}
	o := offers[0]
	if o.Actor != "B" || o.OtherActor != "A" || o.Type != Confrontation {
		t.Fatalf("offer = %+v, want confrontation of B by A", o)
	}
	if !almostEqual(o.EU, 0.1, tol) || !almostEqual(o.OtherEU, 5.0/22, tol) {
		t.Errorf("offer EUs = (%g, %g), want (0.1, %g)", o.EU, o.OtherEU, 5.0/22)
	}
	if o.NewPosition != 0 {
		t.Errorf("new position = %g, want 0", o.NewPosition)
	}

	want := map[string]float64{"A": 0, "B": 0, "C": 10}
	for name, pos := range want {
		if got := m.ActorByName(name).Position; got != pos {
			t.Errorf("position of %s = %g, want %g", name, got, pos)
		}
	}
}

func TestUpdatePositionsNoChangeOnStalemate(t *testing.T) {
	m := twoActorModel(t)
	if offers := m.UpdatePositions(); len(offers) != 0 {
		t.Fatalf("accepted offers = %+v, want none", offers)
	}
	if us := m.ActorByName("US").Position; us != 0 {
		t.Errorf("US position = %g, want 0", us)
	}
	if cn := m.ActorByName("China").Position; cn != 10 {
		t.Errorf("China position = %g, want 10", cn)
	}
}

func TestRunZeroRounds(t *testing.T) {
	m := threeActorModel(t)
	res, err := m.Run(0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.InitialMedian != 10 {
		t.Errorf("initial median = %g, want 10", res.InitialMedian)
	}
	if !almostEqual(res.InitialMean, 4.0/0.59, tol) {
		t.Errorf("initial mean = %.10f, want %.10f", res.InitialMean, 4.0/0.59)
	}
	if len(res.Rounds) != 0 {
		t.Errorf("rounds = %d, want 0", len(res.Rounds))
	}
}

func TestRunNegativeRounds(t *testing.T) {
	m := threeActorModel(t)
	if _, err := m.Run(-1); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestRunDegenerateDangerAborts(t *testing.T) {
	m := twoActorModel(t)
	_, err := m.Run(1)
	if !errors.Is(err, ErrDegenerateDanger) {
		t.Fatalf("err = %v, want ErrDegenerateDanger", err)
	}
}

func TestRunMatchesManualPhases(t *testing.T) {
	// One Run round must equal an explicit risk-aversion update followed
	// by a position update on an identical model.
	run := threeActorModel(t)
	manual := threeActorModel(t)

	res, err := run.Run(1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := manual.UpdateRiskAversions(); err != nil {
		t.Fatalf("UpdateRiskAversions: %v", err)
	}
	offers := manual.UpdatePositions()

	if len(res.Rounds) != 1 {
		t.Fatalf("rounds = %d, want 1", len(res.Rounds))
	}
	rr := res.Rounds[0]
	if rr.Round != 1 {
		t.Errorf("round index = %d, want 1", rr.Round)
	}
	if len(rr.Offers) != len(offers) {
		t.Fatalf("offers = %d, want %d", len(rr.Offers), len(offers))
	}
	for i := range offers {
		if rr.Offers[i] != offers[i] {
			t.Errorf("offer %d = %+v, want %+v", i, rr.Offers[i], offers[i])
		}
	}
	for _, a := range manual.Actors() {
		if got := rr.Positions[a.Name]; !almostEqual(got, a.Position, tol) {
			t.Errorf("position of %s = %g, want %g", a.Name, got, a.Position)
		}
		if got := rr.RiskAversions[a.Name]; !almostEqual(got, a.RiskAversion, tol) {
			t.Errorf("risk aversion of %s = %g, want %g", a.Name, got, a.RiskAversion)
		}
	}
	if !almostEqual(rr.Median, manual.MedianPosition(), tol) {
		t.Errorf("median = %g, want %g", rr.Median, manual.MedianPosition())
	}
	if !almostEqual(rr.Mean, manual.MeanPosition(), tol) {
		t.Errorf("mean = %g, want %g", rr.Mean, manual.MeanPosition())
	}
}
