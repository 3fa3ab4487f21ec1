// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package cache

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/d-setiawan/sird-forecasting-go/simulation"
	"github.com/d-setiawan/sird-forecasting-go/timeseries"
)

// jsonFloat marshals NaN and infinities as null so scenario
// aggregates survive the JSON payload.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = jsonFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

type frameDoc struct {
	Dates   []string               `json:"dates"`
	Columns []string               `json:"columns"`
	Values  map[string][]jsonFloat `json:"values"`
}

type resultsDoc struct {
	RunID            string              `json:"run_id"`
	CreatedAt        time.Time           `json:"created_at"`
	Horizon          int                 `json:"horizon"`
	ScenarioCount    int                 `json:"scenario_count"`
	ScenarioKeys     []string            `json:"scenario_keys"`
	ClippedScenarios []string            `json:"clipped_scenarios"`
	ElapsedNS        int64               `json:"elapsed_ns"`
	Names            []string            `json:"names"`
	Compartments     map[string]frameDoc `json:"compartments"`
}

func frameToDoc(f *timeseries.Frame) frameDoc {
	dates := make([]string, f.Len())
	for i, d := range f.Dates() {
		dates[i] = d.Format(time.RFC3339)
	}
	columns := f.Columns()
	values := make(map[string][]jsonFloat, len(columns))
	for _, name := range columns {
		col := f.Column(name)
		vals := make([]jsonFloat, len(col))
		for i, v := range col {
			vals[i] = jsonFloat(v)
		}
		values[name] = vals
	}
	return frameDoc{Dates: dates, Columns: columns, Values: values}
}

func docToFrame(doc frameDoc) (*timeseries.Frame, error) {
	dates := make([]time.Time, len(doc.Dates))
	for i, s := range doc.Dates {
		d, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("parse cached date %q: %w", s, err)
		}
		dates[i] = d
	}
	frame, err := timeseries.New(dates)
	if err != nil {
		return nil, err
	}
	for _, name := range doc.Columns {
		vals, ok := doc.Values[name]
		if !ok {
			return nil, fmt.Errorf("cached frame is missing column %q", name)
		}
		col := make([]float64, len(vals))
		for i, v := range vals {
			col[i] = float64(v)
		}
		if err := frame.AddColumn(name, col); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func encodeResults(r *simulation.Results) ([]byte, error) {
	doc := resultsDoc{
		RunID:            r.RunID,
		CreatedAt:        r.CreatedAt,
		Horizon:          r.Horizon,
		ScenarioCount:    r.ScenarioCount,
		ScenarioKeys:     r.ScenarioKeys,
		ClippedScenarios: r.ClippedScenarios,
		ElapsedNS:        r.Elapsed.Nanoseconds(),
		Names:            r.Names,
		Compartments:     make(map[string]frameDoc, len(r.Compartments)),
	}
	for name, frame := range r.Compartments {
		doc.Compartments[name] = frameToDoc(frame)
	}
	return json.Marshal(doc)
}

func decodeResults(payload []byte) (*simulation.Results, error) {
	var doc resultsDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode cached results: %w", err)
	}
	comps := make(map[string]*timeseries.Frame, len(doc.Compartments))
	for name, fd := range doc.Compartments {
		frame, err := docToFrame(fd)
		if err != nil {
			return nil, err
		}
		comps[name] = frame
	}
	return &simulation.Results{
		RunID:            doc.RunID,
		CreatedAt:        doc.CreatedAt,
		Horizon:          doc.Horizon,
		ScenarioCount:    doc.ScenarioCount,
		ScenarioKeys:     doc.ScenarioKeys,
		ClippedScenarios: doc.ClippedScenarios,
		Elapsed:          time.Duration(doc.ElapsedNS),
		Names:            doc.Names,
		Compartments:     comps,
	}, nil
}
