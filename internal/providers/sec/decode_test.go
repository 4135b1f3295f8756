package sec

import (
	"errors"
	"testing"

	"github.com/seenimoa/sharesrange/internal/provider"
	"github.com/seenimoa/sharesrange/pkg/models"
)

const strictConceptJSON = `{
  "cik": 2969,
  "taxonomy": "dei",
  "tag": "EntityCommonStockSharesOutstanding",
  "label": "Entity Common Stock, Shares Outstanding",
  "description": "Indicate number of shares or other units outstanding of each of registrant's classes of capital or common stock.",
  "entityName": "AIR PRODUCTS & CHEMICALS, INC.",
  "units": {
    "shares": [
      {"end": "2019-11-08", "val": 220811000, "accn": "0000002969-19-000052", "fy": 2019, "fp": "FY", "form": "10-K", "filed": "2019-11-21"},
      {"end": "2021-01-22", "val": 221393000, "accn": "0000002969-21-000007", "fy": 2021, "fp": "Q1", "form": "10-Q", "filed": "2021-01-28"},
      {"end": "2022-11-11", "val": 221960000, "accn": "0000002969-22-000055", "fy": 2022, "fp": "FY", "form": "10-K", "filed": "2022-11-22"},
      {"end": "2023-04-21", "val": 222239840, "accn": "0000002969-23-000031", "fy": 2023, "fp": "Q2", "form": "10-Q", "filed": "2023-04-27"},
      {"end": "2015-04-24", "val": 214000000, "accn": "0000002969-15-000022", "fy": null, "fp": "Q2", "form": "10-Q", "filed": "2015-04-28"}
    ]
  }
}`

func TestDecodeStrict(t *testing.T) {
	concept, path, err := decodeConcept([]byte(strictConceptJSON))
	if err != nil {
		t.Fatalf("decodeConcept: %v", err)
	}
	if path != models.DecodeStrict {
		t.Errorf("path = %s, want strict", path)
	}
	if concept.entityName != "AIR PRODUCTS & CHEMICALS, INC." {
		t.Errorf("entityName = %q", concept.entityName)
	}
	if concept.unit != "shares" {
		t.Errorf("unit = %q", concept.unit)
	}
	if len(concept.entries) != 5 {
		t.Fatalf("entries = %d, want 5", len(concept.entries))
	}
	if concept.entries[0].label != "2019" || concept.entries[0].value != float64(220811000) {
		t.Errorf("entries[0] = %+v", concept.entries[0])
	}
	if concept.entries[4].label != "" {
		t.Errorf("null fy should give an empty label, got %q", concept.entries[4].label)
	}
}

func TestDecodeHeuristicStringFields(t *testing.T) {
	// fy and val as strings do not match the strict schema
	body := `{"entityName":"Fixture Corp","units":{"shares":[
		{"fy":"2021","val":100},
		{"fy":"2022","val":"300"},
		{"fy":"2019","val":50}
	]}}`
	concept, path, err := decodeConcept([]byte(body))
	if err != nil {
		t.Fatalf("decodeConcept: %v", err)
	}
	if path != models.DecodeHeuristic {
		t.Errorf("path = %s, want heuristic", path)
	}
	if len(concept.entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(concept.entries))
	}
	if concept.entries[1].label != "2022" || concept.entries[1].value != "300" {
		t.Errorf("entries[1] = %+v", concept.entries[1])
	}
}

func TestDecodeHeuristicScansSiblingUnits(t *testing.T) {
	body := `{"name":"Alt Name Inc","units":{
		"USD": [{"end":"2022-01-01"}],
		"pure": [],
		"shares_class_a": [{"year":"FY2022","value":10},{"fy":2023,"val":20}],
		"other": [{"fy":2024,"val":1}]
	}}`
	concept, path, err := decodeConcept([]byte(body))
	if err != nil {
		t.Fatalf("decodeConcept: %v", err)
	}
	if path != models.DecodeHeuristic {
		t.Errorf("path = %s, want heuristic", path)
	}
	if concept.unit != "shares_class_a" {
		t.Errorf("unit = %q, want first conforming sibling shares_class_a", concept.unit)
	}
	if concept.altName != "Alt Name Inc" || concept.entityName != "" {
		t.Errorf("names = %q / %q", concept.entityName, concept.altName)
	}
	if len(concept.entries) != 2 || concept.entries[0].label != "FY2022" || concept.entries[1].label != "2023" {
		t.Errorf("entries = %+v", concept.entries)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>Too Many Requests</html>`},
		{"truncated", `{"entityName":"X","units":{"shares":[{"fy":2021`},
		{"empty", ``},
		{"no units", `{"entityName":"X"}`},
		{"units not object", `{"entityName":"X","units":[1,2]}`},
		{"no conforming collection", `{"entityName":"X","units":{"USD":[{"end":"2022"}]}}`},
		{"top-level array", `[{"fy":2021,"val":1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := decodeConcept([]byte(tt.body))
			var malformed *provider.MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Errorf("err = %v, want *MalformedResponseError", err)
			}
		})
	}
}

func TestEntityNameFallback(t *testing.T) {
	tests := []struct {
		concept decodedConcept
		want    string
	}{
		{decodedConcept{entityName: "Primary", altName: "Alt"}, "Primary"},
		{decodedConcept{altName: "Alt"}, "Alt"},
		{decodedConcept{}, "Unknown Entity"},
	}
	for _, tt := range tests {
		if got := entityName(&tt.concept); got != tt.want {
			t.Errorf("entityName(%+v) = %q, want %q", tt.concept, got, tt.want)
		}
	}
}

func TestDecodeStrictNullOrMissingValueDropped(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"null val", `{"entityName":"X","units":{"shares":[{"fy":2021,"val":100},{"fy":2022,"val":null},{"fy":2023,"val":250}]}}`},
		{"missing val", `{"entityName":"X","units":{"shares":[{"fy":2021,"val":100},{"fy":2022},{"fy":2023,"val":250}]}}`},
		{"null and missing", `{"entityName":"X","units":{"shares":[{"fy":2021,"val":100},{"fy":2022,"val":null},{"fy":2024},{"fy":2023,"val":250}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			concept, path, err := decodeConcept([]byte(tt.body))
			if err != nil {
				t.Fatalf("decodeConcept: %v", err)
			}
			if path != models.DecodeStrict {
				t.Errorf("path = %s, want strict", path)
			}

			obs := filterObservations(concept.entries, 2020)
			if len(obs) != 2 {
				t.Fatalf("considered %d observations, want 2: %+v", len(obs), obs)
			}
			hi, lo, ok := selectExtrema(obs)
			if !ok {
				t.Fatal("expected extrema")
			}
			if lo.Value != 100 || lo.RawYearLabel != "2021" {
				t.Errorf("min = %+v, want {100 2021}", lo)
			}
			if hi.Value != 250 || hi.RawYearLabel != "2023" {
				t.Errorf("max = %+v, want {250 2023}", hi)
			}
		})
	}
}

func TestDecodePathsAgreeOnNullValue(t *testing.T) {
	strict := `{"units":{"shares":[{"fy":2021,"val":100},{"fy":2022,"val":null},{"fy":2023}]}}`
	heuristic := `{"units":{"shares":[{"fy":"2021","val":100},{"fy":"2022","val":null},{"fy":"2023"}]}}`

	var considered []int
	for _, body := range []string{strict, heuristic} {
		concept, _, err := decodeConcept([]byte(body))
		if err != nil {
			t.Fatalf("decodeConcept(%s): %v", body, err)
		}
		considered = append(considered, len(filterObservations(concept.entries, 2020)))
	}
	if considered[0] != 1 || considered[1] != 1 {
		t.Errorf("considered = %v, want [1 1]", considered)
	}
}
