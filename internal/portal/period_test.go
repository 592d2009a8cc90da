package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"testing"
)

const elementPageHTML = `<!DOCTYPE html>
<html><body>
<div id="aggrgPeriod">
<div><label><input type="radio" name="aggrgPeriod" value="9" id="hourly"><span>時別値</span></label></div>
<div><label><input type="radio" name="aggrgPeriod" value="1" id="daily"><span>日別値</span></label></div>
<div><label><input type="radio" name="aggrgPeriod" value="2" id="ndays">
<select name="interval"><option value="2">2</option><option value="3">3</option><option value="5">5</option><option value="10">10</option></select>
<span>日別値</span></label></div>
<div><label><input type="radio" name="aggrgPeriod" value="801" id="monthly"><span>月別値</span></label></div>
</div>
</body></html>`

func TestAggregationPeriods(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, elementPageHTML)
	}))

	periods, err := client.AggregationPeriods(context.Background())
	if err != nil {
		t.Fatalf("AggregationPeriods: %v", err)
	}
	if len(periods) != 4 {
		t.Fatalf("got %d periods, want 4: %v", len(periods), periods)
	}

	if p := periods[9]; p.Name != "時別値" || p.Range != nil {
		t.Errorf("period 9: got %+v", p)
	}
	if p := periods[1]; p.Name != "日別値" || p.Range != nil {
		t.Errorf("period 1: got %+v", p)
	}
	// The N-day period is named by its input id and carries the
	// sub-range values.
	if p := periods[2]; p.Name != "ndays" || !reflect.DeepEqual(p.Range, []int{2, 3, 5, 10}) {
		t.Errorf("period 2: got %+v", p)
	}
	if p := periods[801]; p.Name != "月別値" {
		t.Errorf("period 801: got %+v", p)
	}
}

func TestAggregationPeriodsMissingContainer(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>maintenance</p></body></html>")
	}))

	_, err := client.AggregationPeriods(context.Background())
	if !errors.Is(err, ErrMissingElement) {
		t.Fatalf("expected ErrMissingElement, got %v", err)
	}
}
