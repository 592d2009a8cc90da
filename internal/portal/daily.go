package portal

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yamori/jmaobs/pkg/tabular"
)

// DailyColumns are the 21 column labels of the rendered daily table,
// verbatim from the portal.
var DailyColumns = []string{
	"日", "現地気圧", "海面気圧", "降水量合計", "降水量1時間最大", "降水量10分最大", "平均気温",
	"最高気温", "最低気温", "平均湿度", "最小湿度", "平均風速", "最大風速", "最大風向き",
	"最大瞬間風速", "最大瞬間風向き", "日照時間", "降雪合計", "最深積雪", "昼天気概況", "夜天気概況",
}

// DailyTable fetches the rendered daily observation page for a station
// and extracts its data table. A missing table is an error (markup
// change or no such station); a present table with no matching rows
// yields an empty table, which is how the portal renders a date with
// no data.
func (c *Client) DailyTable(ctx context.Context, precNo, blockNo int, day time.Time) (*tabular.Table, error) {
	q := url.Values{}
	q.Set("prec_no", strconv.Itoa(precNo))
	q.Set("block_no", strconv.Itoa(blockNo))
	q.Set("year", strconv.Itoa(day.Year()))
	q.Set("month", strconv.Itoa(int(day.Month())))
	q.Set("day", strconv.Itoa(day.Day()))
	q.Set("view", "p1")

	doc, err := c.getDocument(ctx, c.endpoints.TableView+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch daily table: %w", err)
	}

	table := doc.Find("table#tablefix1.data2_s")
	if table.Length() == 0 {
		return nil, fmt.Errorf("daily table #tablefix1: %w", ErrMissingElement)
	}

	out := tabular.NewTable(DailyColumns)
	var parseErr error
	table.Find(`tr.mtx[style="text-align:right;"]`).EachWithBreak(func(i int, row *goquery.Selection) bool {
		var cells []string
		row.Find("td").Each(func(_ int, td *goquery.Selection) {
			// Empty cells are dropped, not kept as placeholders.
			if text := strings.TrimSpace(td.Text()); text != "" {
				cells = append(cells, text)
			}
		})
		if err := out.AppendRow(cells); err != nil {
			parseErr = fmt.Errorf("daily table row %d: %w", i, err)
			return false
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return out, nil
}
