package display

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/sharesrange/web"
)

// HTMLPage binds slots into an HTML document by element id. Slots without a
// matching element are ignored.
type HTMLPage struct {
	doc *goquery.Document
}

// NewHTMLPage parses html into a page.
func NewHTMLPage(html []byte) (*HTMLPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &HTMLPage{doc: doc}, nil
}

// NewDefaultPage parses the embedded page template.
func NewDefaultPage() (*HTMLPage, error) {
	return NewHTMLPage(web.Page())
}

func (p *HTMLPage) SetSlot(id SlotID, text string) {
	p.doc.Find("#" + string(id)).SetText(text)
}

func (p *HTMLPage) SetTitle(title string) {
	p.doc.Find("title").SetText(title)
}

// Slot returns the text content of the element bound to id.
func (p *HTMLPage) Slot(id SlotID) string {
	return p.doc.Find("#" + string(id)).Text()
}

// Title returns the document title.
func (p *HTMLPage) Title() string {
	return p.doc.Find("title").Text()
}

// Render serializes the bound document.
func (p *HTMLPage) Render() ([]byte, error) {
	html, err := p.doc.Html()
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return []byte(html), nil
}
