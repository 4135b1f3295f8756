package sec

import (
	"encoding/json"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/seenimoa/sharesrange/internal/provider"
	"github.com/seenimoa/sharesrange/pkg/models"
)

// sharesUnit is the unit key preferred in the units object.
const sharesUnit = "shares"

// Field names accepted by the heuristic decoder, in order of preference.
var (
	yearLabelFields = []string{"fy", "year"}
	valueFields     = []string{"val", "value"}
)

// decodeConcept turns a company concept body into raw entries. It tries the
// strict EDGAR schema first and falls back to probing the units object:
//
//  1. units.shares when present (entries are taken as-is);
//  2. otherwise the first sibling array, in document order, that is
//     non-empty and whose every element is an object exposing a year-label
//     field (fy, year) and a value field (val, value).
//
// A body that is not JSON, has no units object, or has no usable collection
// fails with *provider.MalformedResponseError.
func decodeConcept(body []byte) (*decodedConcept, models.DecodePath, error) {
	if !gjson.ValidBytes(body) {
		return nil, "", &provider.MalformedResponseError{Detail: "body is not valid JSON"}
	}

	if concept, ok := decodeStrict(body); ok {
		return concept, models.DecodeStrict, nil
	}

	concept, err := decodeHeuristic(body)
	if err != nil {
		return nil, "", err
	}
	return concept, models.DecodeHeuristic, nil
}

func decodeStrict(body []byte) (*decodedConcept, bool) {
	var resp edgarCompanyConceptResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false
	}
	units, ok := resp.Units[sharesUnit]
	if !ok || units == nil {
		return nil, false
	}

	entries := make([]rawEntry, 0, len(units))
	for _, u := range units {
		label := ""
		if u.FY != nil {
			label = strconv.Itoa(*u.FY)
		}
		entry := rawEntry{label: label}
		if u.Val != nil {
			entry.value = *u.Val
		}
		entries = append(entries, entry)
	}

	return &decodedConcept{
		entityName: resp.EntityName,
		altName:    resp.Name,
		unit:       sharesUnit,
		entries:    entries,
	}, true
}

func decodeHeuristic(body []byte) (*decodedConcept, error) {
	root := gjson.ParseBytes(body)
	units := root.Get("units")
	if !units.IsObject() {
		return nil, &provider.MalformedResponseError{Detail: "missing units object"}
	}

	concept := &decodedConcept{
		entityName: root.Get("entityName").String(),
		altName:    root.Get("name").String(),
	}

	if shares := units.Get(sharesUnit); shares.IsArray() {
		concept.unit = sharesUnit
		concept.entries = toRawEntries(shares)
		return concept, nil
	}

	units.ForEach(func(key, value gjson.Result) bool {
		if looksLikeObservations(value) {
			concept.unit = key.String()
			concept.entries = toRawEntries(value)
			return false
		}
		return true
	})

	if concept.entries == nil {
		return nil, &provider.MalformedResponseError{Detail: "no observation collection under units"}
	}
	return concept, nil
}

func looksLikeObservations(v gjson.Result) bool {
	if !v.IsArray() {
		return false
	}
	elems := v.Array()
	if len(elems) == 0 {
		return false
	}
	for _, el := range elems {
		if !el.IsObject() || !firstField(el, yearLabelFields).Exists() || !firstField(el, valueFields).Exists() {
			return false
		}
	}
	return true
}

func toRawEntries(arr gjson.Result) []rawEntry {
	elems := arr.Array()
	entries := make([]rawEntry, 0, len(elems))
	for _, el := range elems {
		entry := rawEntry{label: firstField(el, yearLabelFields).String()}
		switch v := firstField(el, valueFields); v.Type {
		case gjson.Number:
			entry.value = v.Num
		case gjson.String:
			entry.value = v.Str
		}
		entries = append(entries, entry)
	}
	return entries
}

// firstField returns the first of names present on obj.
func firstField(obj gjson.Result, names []string) gjson.Result {
	for _, name := range names {
		if r := obj.Get(name); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}
