package models

// DecodePath identifies which decoder produced the observations of a result.
type DecodePath string

const (
	// DecodeStrict means the body matched the EDGAR company-concept schema.
	DecodeStrict DecodePath = "strict"
	// DecodeHeuristic means the observations were located by probing sibling
	// unit collections.
	DecodeHeuristic DecodePath = "heuristic"
)

// Observation is one reported (year, value) data point from the source series.
type Observation struct {
	Year         int     `json:"year"`
	Value        float64 `json:"value"`
	RawYearLabel string  `json:"raw_year_label"`
}

// ExtractionResult holds the entity name plus the maximum and minimum
// observations after the cutoff year. Computed per request and not persisted.
type ExtractionResult struct {
	CIK        string      `json:"cik"`
	EntityName string      `json:"entity_name"`
	Max        Observation `json:"max"`
	Min        Observation `json:"min"`
	Considered int         `json:"considered"` // size of the filtered set
	DecodePath DecodePath  `json:"decode_path"`
	Transport  string      `json:"transport"`
}
