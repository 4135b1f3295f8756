// Package display binds an extraction result, or the error that replaced it,
// to named display slots.
package display

import (
	"github.com/seenimoa/sharesrange/internal/provider"
	"github.com/seenimoa/sharesrange/pkg/models"
	"github.com/seenimoa/sharesrange/pkg/utils"
)

// SlotID names a display field. The ids are stable and match the element ids
// of the embedded page.
type SlotID string

const (
	SlotCompanyName  SlotID = "companyName"
	SlotMaxValue     SlotID = "maxValue"
	SlotMaxYear      SlotID = "maxYear"
	SlotMinValue     SlotID = "minValue"
	SlotMinYear      SlotID = "minYear"
	SlotErrorMessage SlotID = "errorMessage"
)

// DataSlots are the slots filled from a successful result, in display order.
var DataSlots = []SlotID{SlotCompanyName, SlotMaxValue, SlotMaxYear, SlotMinValue, SlotMinYear}

const titleSuffix = " | Shares Outstanding"

// Binder receives slot values.
type Binder interface {
	SetSlot(id SlotID, text string)
	SetTitle(title string)
}

// Bind writes result into the data slots, clears the error slot and sets the
// title to "{EntityName} | Shares Outstanding".
func Bind(b Binder, result *models.ExtractionResult) {
	b.SetSlot(SlotCompanyName, result.EntityName)
	b.SetSlot(SlotMaxValue, utils.FormatShares(result.Max.Value))
	b.SetSlot(SlotMaxYear, result.Max.RawYearLabel)
	b.SetSlot(SlotMinValue, utils.FormatShares(result.Min.Value))
	b.SetSlot(SlotMinYear, result.Min.RawYearLabel)
	b.SetSlot(SlotErrorMessage, "")
	b.SetTitle(Title(result.EntityName))
}

// BindError writes the user message for err into the error slot only.
func BindError(b Binder, err error) {
	b.SetSlot(SlotErrorMessage, provider.UserMessage(err))
}

// Title returns the page title for entity.
func Title(entity string) string {
	return entity + titleSuffix
}

// Slots is an in-memory Binder. Unset slots are absent from the map.
type Slots struct {
	Values map[SlotID]string `json:"slots"`
	Title  string            `json:"title,omitempty"`
}

// NewSlots returns an empty Slots.
func NewSlots() *Slots {
	return &Slots{Values: make(map[SlotID]string)}
}

func (s *Slots) SetSlot(id SlotID, text string) { s.Values[id] = text }

func (s *Slots) SetTitle(title string) { s.Title = title }

// Get returns the value of id and whether it was set.
func (s *Slots) Get(id SlotID) (string, bool) {
	v, ok := s.Values[id]
	return v, ok
}
