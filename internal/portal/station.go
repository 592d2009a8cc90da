package portal

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ObservationCapabilities are the per-station observation flags decoded
// from the kansoku bit-string. Any character other than '0' means the
// element is observed (the portal uses '2' for some sunshine stations).
type ObservationCapabilities struct {
	Rain bool `json:"rain"`
	Wind bool `json:"wind"`
	Temp bool `json:"temp"`
	Sun  bool `json:"sun"`
	Snow bool `json:"snow"`
	Etc  bool `json:"etc"`
}

// StationInfo is one observation station from the station selection
// page: the raw hidden form fields, the colon-delimited attributes from
// the container's title text, and the decoded capability flags.
type StationInfo struct {
	// ID is the station code (the stid hidden field's value).
	ID string `json:"id"`
	// Name is the station display name, when the page carries one.
	Name string `json:"name,omitempty"`
	// Hidden holds every hidden input name/value pair of the station
	// container, as the download form expects them.
	Hidden map[string]string `json:"hidden"`
	// Attrs holds the colon-delimited lines of the title attribute.
	// Malformed lines are skipped, not fatal.
	Attrs map[string]string `json:"attrs"`
	// Capabilities is nil when the kansoku bit-string is absent or
	// shorter than five characters.
	Capabilities *ObservationCapabilities `json:"capabilities,omitempty"`
}

// Prefectures fetches the station selection page and maps each
// prefecture id to its display name.
func (c *Client) Prefectures(ctx context.Context) (map[int]string, error) {
	doc, err := c.getDocument(ctx, c.endpoints.Station)
	if err != nil {
		return nil, fmt.Errorf("fetch station page: %w", err)
	}

	prefectures := make(map[int]string)
	var parseErr error
	doc.Find("div.prefecture").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		val, ok := div.Find(`input[name="prid"]`).Attr("value")
		if !ok {
			parseErr = fmt.Errorf("prefecture without prid input: %w", ErrMissingElement)
			return false
		}
		id, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			parseErr = fmt.Errorf("prefecture id %q: %w", val, err)
			return false
		}
		prefectures[id] = strings.TrimSpace(div.Text())
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return prefectures, nil
}

// Stations posts a prefecture id and returns the stations listed for
// it, keyed by station code.
func (c *Client) Stations(ctx context.Context, prefectureID int) (map[string]*StationInfo, error) {
	form := url.Values{}
	form.Set("pd", strconv.Itoa(prefectureID))
	doc, err := c.postDocument(ctx, c.endpoints.Station, form)
	if err != nil {
		return nil, fmt.Errorf("fetch stations for prefecture %d: %w", prefectureID, err)
	}

	stations := make(map[string]*StationInfo)
	doc.Find("div.station").Each(func(_ int, div *goquery.Selection) {
		info := parseStation(div)
		if info != nil {
			stations[info.ID] = info
		}
	})
	return stations, nil
}

// parseStation assembles one StationInfo from a station container.
// Containers without a stid hidden field are not stations.
func parseStation(div *goquery.Selection) *StationInfo {
	hidden := parseHiddenInputs(div)
	id, ok := hidden["stid"]
	if !ok {
		return nil
	}

	info := &StationInfo{
		ID:     id,
		Name:   hidden["stname"],
		Hidden: hidden,
		Attrs:  map[string]string{},
	}
	if title, ok := div.Attr("title"); ok {
		info.Attrs = parseTitleText(title)
	}
	info.Capabilities = parseCapabilities(hidden["kansoku"])
	return info
}

// parseHiddenInputs collects every hidden input name/value pair under
// the given container.
func parseHiddenInputs(parent *goquery.Selection) map[string]string {
	pairs := make(map[string]string)
	parent.Find(`input[type="hidden"]`).Each(func(_ int, inp *goquery.Selection) {
		name, ok := inp.Attr("name")
		if !ok {
			return
		}
		value, _ := inp.Attr("value")
		pairs[name] = value
	})
	return pairs
}

// parseTitleText parses the colon-delimited lines of a station title
// attribute. The portal mixes full-width and ASCII colons. Lines with
// fewer than two parts are skipped and logged; a station record is
// still useful without every title field.
func parseTitleText(text string) map[string]string {
	attrs := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		parts := strings.Split(strings.ReplaceAll(line, "：", ":"), ":")
		if len(parts) < 2 {
			if strings.TrimSpace(line) != "" {
				log.Printf("portal: skipping malformed station title line %q", line)
			}
			continue
		}
		attrs[parts[0]] = parts[1]
	}
	return attrs
}

// parseCapabilities decodes the kansoku bit-string. Returns nil when
// the string is absent or shorter than five characters; a missing
// sixth character reads as false.
func parseCapabilities(bits string) *ObservationCapabilities {
	if len(bits) < 5 {
		return nil
	}
	at := func(i int) bool {
		return i < len(bits) && bits[i] != '0'
	}
	return &ObservationCapabilities{
		Rain: at(0),
		Wind: at(1),
		Temp: at(2),
		Sun:  at(3),
		Snow: at(4),
		Etc:  at(5),
	}
}
