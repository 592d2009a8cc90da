package portal

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yamori/jmaobs/pkg/jptext"
	"github.com/yamori/jmaobs/pkg/tabular"
)

// DownloadRequest describes one observation CSV download.
//
// The portal encodes the date range as six values (begin/end year,
// begin/end month, begin/end day), so the month/day range applies to
// every year in the span. That is the portal's own shape, carried
// as-is.
type DownloadRequest struct {
	SessionID         string
	AggregationPeriod int
	Station           string
	Elements          []int
	Begin             time.Time
	End               time.Time
}

// headerLines is the number of header rows in the downloaded CSV,
// after the two title lines.
const headerLines = 4

// droppedHeaderLevel is the quality-information header row, removed
// when collapsing.
const droppedHeaderLevel = 2

// DownloadCSV posts the download form and parses the returned CSV.
// The response body is Shift_JIS even though the portal pages are
// UTF-8. The first two lines are title lines, then four header rows
// which collapse to three levels, then the data rows.
func (c *Client) DownloadCSV(ctx context.Context, req DownloadRequest) (*tabular.MultiTable, error) {
	body, err := c.doPostForm(ctx, c.endpoints.CSVTable, buildDownloadForm(req))
	if err != nil {
		return nil, fmt.Errorf("download CSV: %w", err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read CSV response: %w", err)
	}
	text, err := jptext.Decode(raw, jptext.ShiftJIS)
	if err != nil {
		return nil, fmt.Errorf("decode CSV response: %w", err)
	}

	return parseDownloadCSV(text)
}

// buildDownloadForm assembles the portal's download form payload. The
// flag values pin the output shape: remarks kept, discontinuities
// ignored, numeric-only cells, literal dates, no weekday or
// time-of-occurrence columns, full-day time range, continuous period.
func buildDownloadForm(req DownloadRequest) url.Values {
	form := url.Values{}
	form.Set("PHPSESSID", req.SessionID)
	form.Set("rmkFlag", "1")
	form.Set("disconnectFlag", "1")
	form.Set("csvFlag", "1")
	form.Set("ymdLiteral", "1")
	form.Set("youbiFlag", "0")
	form.Set("kijiFlag", "0")
	form.Set("aggrgPeriod", strconv.Itoa(req.AggregationPeriod))
	form.Set("stationNumList", encodeStationList(req.Station))
	form.Set("elementNumList", encodeElementList(req.Elements))
	form.Set("ymdList", encodeYmdList(req.Begin, req.End))
	form.Set("jikantaiFlag", "0")
	form.Set("jikantaiList", "[1,24]")
	form.Set("interAnnualFlag", "1")
	form.Set("optionNumList", "")
	form.Set("downloadFlag", "true")
	form.Set("huukouFlag", "0")
	return form
}

// encodeStationList renders the single-station list the form expects.
func encodeStationList(station string) string {
	return fmt.Sprintf(`["%s"]`, station)
}

// encodeElementList renders element ids as the form's JSON array of
// [id, option] pairs with empty options.
func encodeElementList(elements []int) string {
	pairs := make([]string, len(elements))
	for i, e := range elements {
		pairs[i] = fmt.Sprintf(`["%d",""]`, e)
	}
	return "[" + strings.Join(pairs, ",") + "]"
}

// encodeYmdList renders the date range as the form's six-element
// array: begin/end year, begin/end month, begin/end day.
func encodeYmdList(begin, end time.Time) string {
	return fmt.Sprintf(`["%d", "%d", "%d", "%d", "%d", "%d"]`,
		begin.Year(), end.Year(),
		int(begin.Month()), int(end.Month()),
		begin.Day(), end.Day())
}

// parseDownloadCSV parses the decoded download text: two title lines
// discarded, four header rows, then data.
func parseDownloadCSV(text string) (*tabular.MultiTable, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) < 2+headerLines {
		return nil, fmt.Errorf("CSV response has %d lines, want at least %d", len(lines), 2+headerLines)
	}

	r := csv.NewReader(strings.NewReader(strings.Join(lines[2:], "\n")))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	if len(records) < headerLines {
		return nil, fmt.Errorf("CSV response has %d records, want at least %d", len(records), headerLines)
	}

	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}

	table := &tabular.MultiTable{
		Header: collapseHeader(records[:headerLines], width),
	}
	for _, rec := range records[headerLines:] {
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		row := make([]string, width)
		copy(row, rec)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// collapseHeader turns the raw header rows into per-column label
// tuples, dropping the quality-information level and blanking
// auto-generated "Unnamed" labels.
func collapseHeader(header [][]string, width int) [][]string {
	cols := make([][]string, width)
	for c := 0; c < width; c++ {
		tuple := make([]string, 0, len(header)-1)
		for lvl, row := range header {
			if lvl == droppedHeaderLevel {
				continue
			}
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			if strings.Contains(cell, "Unnamed") {
				cell = ""
			}
			tuple = append(tuple, cell)
		}
		cols[c] = tuple
	}
	return cols
}
