package sec

// --- EDGAR Company Concept (XBRL) ---
// data.sec.gov/api/xbrl/companyconcept/CIK##########/{taxonomy}/{tag}.json

// edgarCompanyConceptResponse is the strict schema of the company concept
// endpoint.
type edgarCompanyConceptResponse struct {
	CIK         int                           `json:"cik"`
	Taxonomy    string                        `json:"taxonomy"`
	Tag         string                        `json:"tag"`
	Label       string                        `json:"label"`
	Description string                        `json:"description"`
	EntityName  string                        `json:"entityName"`
	Name        string                        `json:"name"`  // alternate name field served by some relays
	Units       map[string][]edgarConceptUnit `json:"units"` // unit type ("shares") -> values
}

type edgarConceptUnit struct {
	End   string   `json:"end"`
	Val   *float64 `json:"val"` // nil when null or absent
	Accn  string   `json:"accn"`
	FY    *int     `json:"fy"` // null for some frames
	FP    string   `json:"fp"` // "Q1", "Q2", "Q3", "FY"
	Form  string   `json:"form"`
	Filed string   `json:"filed"`
	Frame string   `json:"frame,omitempty"`
}

// rawEntry is one observation before year derivation and numeric coercion.
type rawEntry struct {
	label string
	value any // float64 or string
}

// decodedConcept is the decoder output shared by the strict and heuristic paths.
type decodedConcept struct {
	entityName string
	altName    string
	unit       string
	entries    []rawEntry
}
