// Package scenario loads actor tables from CSV into the forms the
// forecasting engine and the persistence layer consume.
package scenario

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/efreeman/polity/internal/model"
	"github.com/efreeman/polity/pkg/bdm"
)

// ErrMissingColumn indicates a CSV header without one of the required
// columns.
var ErrMissingColumn = errors.New("missing required column")

// Required CSV columns, matched case-insensitively. Extra columns are
// ignored.
var requiredColumns = []string{"Actor", "Capability", "Salience", "Position"}

// ReadRecords parses a CSV actor table. The first row is the header; it
// must name the Actor, Capability, Salience and Position columns in any
// order. Field validation happens later, in bdm.ParseActor, so malformed
// values are reported with their record index and field name.
func ReadRecords(r io.Reader) ([]bdm.ActorRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: %w", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []bdm.ActorRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		records = append(records, bdm.ActorRecord{
			Actor:      row[cols["actor"]],
			Capability: row[cols["capability"]],
			Salience:   row[cols["salience"]],
			Position:   row[cols["position"]],
		})
	}
	return records, nil
}

// LoadFile reads a CSV actor table from disk.
func LoadFile(path string) ([]bdm.ActorRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, want := range requiredColumns {
		if _, ok := cols[strings.ToLower(want)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, want)
		}
	}
	return cols, nil
}

// RecordsFromInputs converts stored actor rows back into raw records so
// model construction runs through the same validation path as CSV input.
func RecordsFromInputs(inputs []model.ActorInput) []bdm.ActorRecord {
	records := make([]bdm.ActorRecord, len(inputs))
	for i, in := range inputs {
		records[i] = bdm.ActorRecord{
			Actor:      in.Name,
			Capability: formatFloat(in.Capability),
			Salience:   formatFloat(in.Salience),
			Position:   formatFloat(in.Position),
		}
	}
	return records
}

// InputsFromRecords parses raw records into stored actor rows, failing on
// the first invalid record.
func InputsFromRecords(records []bdm.ActorRecord) ([]model.ActorInput, error) {
	inputs := make([]model.ActorInput, len(records))
	for i, rec := range records {
		a, err := bdm.ParseActor(rec, i)
		if err != nil {
			return nil, err
		}
		inputs[i] = model.ActorInput{
			Name:       a.Name,
			Capability: a.Capability,
			Salience:   a.Salience,
			Position:   a.Position,
		}
	}
	return inputs, nil
}

// TieBreakFromString maps a stored tie-break name to the model option
// value. Unknown or empty names fall back to the Scholz key.
func TieBreakFromString(name string) bdm.TieBreak {
	if name == "least_change" {
		return bdm.TieBreakLeastChange
	}
	return bdm.TieBreakScholz
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
