// Package web embeds the HTML page that displays a shares-outstanding range.
//
// The page carries one element per display slot, addressed by id, and is
// bound server-side by internal/display.
package web

import (
	_ "embed"
)

//go:embed page.html
var page []byte

// Page returns a copy of the embedded page template.
func Page() []byte {
	out := make([]byte, len(page))
	copy(out, page)
	return out
}
