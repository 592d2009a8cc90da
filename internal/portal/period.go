package portal

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AggregationPeriod is one reporting interval offered by the element
// selection page (daily, monthly, hourly, N-day...). Range is set only
// for the N-day-interval periods, which expose a sub-range select.
type AggregationPeriod struct {
	Name  string `json:"name"`
	Range []int  `json:"range,omitempty"`
}

// AggregationPeriods fetches the element selection page and maps each
// aggregation period id to its definition.
func (c *Client) AggregationPeriods(ctx context.Context) (map[int]AggregationPeriod, error) {
	doc, err := c.getDocument(ctx, c.endpoints.Element)
	if err != nil {
		return nil, fmt.Errorf("fetch element page: %w", err)
	}

	container := doc.Find("#aggrgPeriod")
	if container.Length() == 0 {
		return nil, fmt.Errorf("aggregation period container #aggrgPeriod: %w", ErrMissingElement)
	}

	periods := make(map[int]AggregationPeriod)
	var parseErr error
	container.Find(`input[name="aggrgPeriod"]`).EachWithBreak(func(_ int, inp *goquery.Selection) bool {
		val, ok := inp.Attr("value")
		if !ok {
			parseErr = fmt.Errorf("aggregation period input without value: %w", ErrMissingElement)
			return false
		}
		id, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			parseErr = fmt.Errorf("aggregation period id %q: %w", val, err)
			return false
		}

		period, err := parsePeriod(inp)
		if err != nil {
			parseErr = err
			return false
		}
		periods[id] = period
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return periods, nil
}

// parsePeriod builds a period definition from the input's parent
// container. Periods with a sub-range select are named by the input id
// and carry the option values; the rest are named by their span text.
func parsePeriod(inp *goquery.Selection) (AggregationPeriod, error) {
	parent := inp.Parent()
	if parent.Find("select").Length() == 0 {
		return AggregationPeriod{Name: strings.TrimSpace(parent.Find("span").Text())}, nil
	}

	name, _ := inp.Attr("id")
	var rng []int
	var parseErr error
	parent.Find("option").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
		val, _ := opt.Attr("value")
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			parseErr = fmt.Errorf("period range option %q: %w", val, err)
			return false
		}
		rng = append(rng, n)
		return true
	})
	if parseErr != nil {
		return AggregationPeriod{}, parseErr
	}
	return AggregationPeriod{Name: name, Range: rng}, nil
}
