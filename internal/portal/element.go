package portal

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ElementKind selects which element group the selection page returns.
type ElementKind int

const (
	// MeteorologicalElements are the weather elements proper.
	MeteorologicalElements ElementKind = 0
	// OtherElements are the remaining selectable items.
	OtherElements ElementKind = 1
)

// ElementDefinition is one selectable observation element. Options is
// set when the element has a companion select; Hidden when it has a
// companion hidden numeric default.
type ElementDefinition struct {
	Name    string   `json:"name"`
	Options []Number `json:"options,omitempty"`
	Hidden  *Number  `json:"hidden,omitempty"`
}

// Elements posts an aggregation period id and element kind to the
// element selection page and returns the enabled elements keyed by
// their form value. Disabled checkboxes produce no entry.
func (c *Client) Elements(ctx context.Context, periodID int, kind ElementKind) (map[string]ElementDefinition, error) {
	form := url.Values{}
	form.Set("aggrgPeriod", strconv.Itoa(periodID))
	form.Set("isTypeNumber", strconv.Itoa(int(kind)))
	doc, err := c.postDocument(ctx, c.endpoints.Element, form)
	if err != nil {
		return nil, fmt.Errorf("fetch elements for period %d: %w", periodID, err)
	}

	// Period cell classes carry only the leading digit of the period
	// id; multi-digit ids (8XX) all share the "8" class.
	leading := strconv.Itoa(periodID)[:1]

	elements := make(map[string]ElementDefinition)
	var parseErr error
	doc.Find("td.kikan" + leading).EachWithBreak(func(_ int, td *goquery.Selection) bool {
		inp := td.Find(`input[type="checkbox"][name="element"]`)
		if inp.Length() == 0 {
			return true
		}
		value, def, err := parseElement(inp.First())
		if err != nil {
			parseErr = err
			return false
		}
		if value != "" {
			elements[value] = def
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return elements, nil
}

// parseElement builds an element definition from its checkbox. A
// disabled checkbox yields an empty value, meaning no entry.
func parseElement(inp *goquery.Selection) (string, ElementDefinition, error) {
	if _, disabled := inp.Attr("disabled"); disabled {
		return "", ElementDefinition{}, nil
	}
	value, ok := inp.Attr("value")
	if !ok {
		return "", ElementDefinition{}, fmt.Errorf("element checkbox without value: %w", ErrMissingElement)
	}

	name, _ := inp.Attr("id")
	def := ElementDefinition{Name: name}

	parent := inp.Parent()
	var parseErr error
	parent.Find("option").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
		raw, _ := opt.Attr("value")
		n, err := ParseNumber(raw)
		if err != nil {
			parseErr = fmt.Errorf("element %s option: %w", value, err)
			return false
		}
		def.Options = append(def.Options, n)
		return true
	})
	if parseErr != nil {
		return "", ElementDefinition{}, parseErr
	}

	// A companion hidden input carries its default as the text node
	// right after it.
	hidden := parent.Find(`input[type="hidden"]`)
	if hidden.Length() > 0 {
		raw := strings.TrimSpace(nextSiblingText(hidden.First()))
		n, err := ParseNumber(raw)
		if err != nil {
			return "", ElementDefinition{}, fmt.Errorf("element %s hidden default: %w", value, err)
		}
		def.Hidden = &n
	}

	return value, def, nil
}

// nextSiblingText returns the first text node following the selection's
// node.
func nextSiblingText(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	for n := s.Nodes[0].NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.TextNode {
			return n.Data
		}
	}
	return ""
}
