package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

// dailyRow renders one table row in the portal's markup. Cell 4 is
// empty to exercise empty-cell dropping, so 22 cells yield 21 values.
func dailyRow(day int) string {
	cells := []string{
		fmt.Sprintf("%d", day), "1008.5", "1011.6", "0.0", "", "0.0",
		"5.4", "10.2", "1.1", "45", "22", "3.1", "6.9", "北西",
		"12.4", "北西", "8.2", "--", "--", "晴", "晴後曇",
	}
	var sb strings.Builder
	sb.WriteString(`<tr class="mtx" style="text-align:right;">`)
	for _, c := range cells {
		sb.WriteString("<td>" + c + "</td>")
	}
	sb.WriteString("</tr>")
	return sb.String()
}

func dailyPageHTML(rows int) string {
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html><html><body>`)
	sb.WriteString(`<table id="tablefix1" class="data2_s">`)
	sb.WriteString(`<tr class="mtx" style="text-align:center;"><th>日</th></tr>`)
	for d := 1; d <= rows; d++ {
		sb.WriteString(dailyRow(d))
	}
	sb.WriteString(`</table></body></html>`)
	return sb.String()
}

func TestDailyTable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("prec_no") != "44" || q.Get("block_no") != "47662" {
			t.Errorf("unexpected station params: %v", q)
		}
		if q.Get("year") != "2023" || q.Get("month") != "1" || q.Get("day") != "15" {
			t.Errorf("unexpected date params: %v", q)
		}
		if q.Get("view") != "p1" {
			t.Errorf("view = %q, want p1", q.Get("view"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, dailyPageHTML(3))
	}))

	table, err := client.DailyTable(context.Background(), 44, 47662, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailyTable: %v", err)
	}

	if len(table.Columns) != 21 {
		t.Fatalf("got %d columns, want 21", len(table.Columns))
	}
	if table.NumRows() != 3 {
		t.Fatalf("got %d rows, want 3", table.NumRows())
	}
	// Row order preserved; empty cell dropped, not kept.
	if table.Rows[0][0] != "1" || table.Rows[2][0] != "3" {
		t.Errorf("unexpected row order: %v", table.Rows)
	}
	if table.Rows[0][4] != "0.0" {
		t.Errorf("cell after dropped empty: got %q, want 0.0", table.Rows[0][4])
	}
	if table.Rows[0][20] != "晴後曇" {
		t.Errorf("last cell: got %q", table.Rows[0][20])
	}
}

func TestDailyTableNoRows(t *testing.T) {
	// A present table with no matching rows is an empty result, not
	// an error: that is how the portal renders a date with no data.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, dailyPageHTML(0))
	}))

	table, err := client.DailyTable(context.Background(), 44, 47662, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailyTable: %v", err)
	}
	if table.NumRows() != 0 {
		t.Fatalf("got %d rows, want 0", table.NumRows())
	}
}

func TestDailyTableMissingTable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>no table</p></body></html>")
	}))

	_, err := client.DailyTable(context.Background(), 44, 47662, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrMissingElement) {
		t.Fatalf("expected ErrMissingElement, got %v", err)
	}
}

func TestDailyTableWrongCellCount(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><table id="tablefix1" class="data2_s">
<tr class="mtx" style="text-align:right;"><td>1</td><td>2</td></tr>
</table></body></html>`)
	}))

	_, err := client.DailyTable(context.Background(), 44, 47662, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected error for a row with the wrong cell count")
	}
}
