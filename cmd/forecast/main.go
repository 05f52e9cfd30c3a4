package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/efreeman/polity/internal/scenario"
	"github.com/efreeman/polity/pkg/bdm"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		csvPath  string
		q        float64
		rounds   int
		tieBreak string
		jsonOut  bool
	)

	flag.StringVar(&csvPath, "csv", "", "Actor table CSV (Actor,Capability,Salience,Position)")
	flag.Float64Var(&q, "q", 1.0, "Status-quo utility weight")
	flag.IntVar(&rounds, "rounds", 1, "Number of bargaining rounds")
	flag.StringVar(&tieBreak, "tiebreak", "scholz", "Compromise tie-break: scholz or least_change")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")

	flag.Parse()

	if csvPath == "" {
		fmt.Fprintln(os.Stderr, "usage: forecast -csv actors.csv [-q 1.0] [-rounds 5] [-tiebreak scholz] [-json]")
		os.Exit(2)
	}

	records, err := scenario.LoadFile(csvPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load actor table")
	}

	m, err := bdm.NewModelFromRecords(records,
		bdm.WithStatusQuoWeight(q),
		bdm.WithCompromiseTieBreak(scenario.TieBreakFromString(tieBreak)),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid actor table")
	}

	result, err := m.Run(rounds)
	if err != nil {
		log.Fatal().Err(err).Msg("Run failed")
	}

	if jsonOut {
		printJSON(result)
		return
	}
	printReport(m, result)
}

func printJSON(result *bdm.RunResult) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(result)
}

func printReport(m *bdm.Model, result *bdm.RunResult) {
	fmt.Printf("Actors: %d   position range: %g\n", len(m.Actors()), m.PositionRange())
	fmt.Printf("Initial median position: %.3f\n", result.InitialMedian)
	fmt.Printf("Initial mean position:   %.3f\n", result.InitialMean)

	for _, rr := range result.Rounds {
		fmt.Printf("\nRound %d\n", rr.Round)
		if len(rr.Offers) == 0 {
			fmt.Println("  no offers accepted (stalemate)")
		}
		for _, o := range rr.Offers {
			fmt.Printf("  %s: moves to %.3f (eu %.3f vs %.3f)\n",
				offerLine(o), o.NewPosition, o.EU, o.OtherEU)
		}
		fmt.Printf("  median %.3f   mean %.3f\n", rr.Median, rr.Mean)
		fmt.Printf("  positions: %s\n", formatByActor(rr.Positions))
		fmt.Printf("  risk:      %s\n", formatByActor(rr.RiskAversions))
	}
}

func offerLine(o bdm.OfferRecord) string {
	switch o.Type {
	case bdm.Confrontation:
		return fmt.Sprintf("%s loses confrontation to %s", o.Actor, o.OtherActor)
	case bdm.Compromise:
		return fmt.Sprintf("%s compromises with %s", o.Actor, o.OtherActor)
	case bdm.Capitulation:
		return fmt.Sprintf("%s capitulates to %s", o.Actor, o.OtherActor)
	default:
		return fmt.Sprintf("%s stalemates with %s", o.Actor, o.OtherActor)
	}
}

func formatByActor(values map[string]float64) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ""
	for i, name := range names {
		if i > 0 {
			out += "  "
		}
		out += fmt.Sprintf("%s=%.3f", name, values[name])
	}
	return out
}
