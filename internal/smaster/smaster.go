// Package smaster reads the agency's station master index file
// (smaster.index): one fixed-width Shift_JIS record per line, 36
// fields at fixed byte offsets.
package smaster

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yamori/jmaobs/pkg/jptext"
	"github.com/yamori/jmaobs/pkg/tabular"
)

// FieldWidths are the byte widths of the 36 fields, in record order,
// per the published smaster.index format.
var FieldWidths = [36]int{
	3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 1, 1, 8, 12, 6, 7, 5, 5, 3,
	1, 1, 8, 8, 12, 18, 8, 5, 12, 1, 1, 1, 1, 1, 1, 5,
}

// Columns are the agency's field labels, in record order. They are
// preserved verbatim (blanks and all) for downstream consumers.
var Columns = [36]string{
	"地点番号", "空白", "管区コード", "観測回数", "全天日射蒸発量降水強風の有無", "天気概況大気現象",
	"現地・海面気圧の観測回数", "観測測器", "日照計測器", "特殊日勤官署", "アメダス府県コード", "観測所区分", "空白",
	"カナ地点名", "ローマ字地点名", "観測所緯度", "観測所経度", "風向風速計の高さｍ", "気圧計の高さｍ",
	"雨量計の地上からの高さｍ", "報告種別", "未使用", "観測開始日時", "観測終了年月日", "漢字地点名", "漢字官署名",
	"都道府県振興局名（左詰めで全角4文字まで）", "標高(官署の高さ)", "空白", "特別地域気象観測所", "視程計",
	"積雪計", "95 型・10 型", "山岳官署", "大気現象の観測状況", "空白",
}

// RecordWidth is the total byte width of a full record.
var RecordWidth = func() int {
	n := 0
	for _, w := range FieldWidths {
		n += w
	}
	return n
}()

// Record is one decoded station master index line. Field values are
// whitespace-trimmed UTF-8; several positions are blank or unused in
// the format and stay empty.
type Record struct {
	StationNumber    string // 地点番号
	Blank1           string // 空白
	RegionCode       string // 管区コード
	ObsCount         string // 観測回数
	ObsFlags         string // 全天日射蒸発量降水強風の有無
	WeatherPhenomena string // 天気概況大気現象
	PressureObsCount string // 現地・海面気圧の観測回数
	Instrument       string // 観測測器
	SunshineRecorder string // 日照計測器
	SpecialDayOffice string // 特殊日勤官署
	AmedasPrefCode   string // アメダス府県コード
	StationCategory  string // 観測所区分
	Blank2           string // 空白
	KanaName         string // カナ地点名
	RomajiName       string // ローマ字地点名
	Latitude         string // 観測所緯度
	Longitude        string // 観測所経度
	AnemometerHeight string // 風向風速計の高さｍ
	BarometerHeight  string // 気圧計の高さｍ
	RainGaugeHeight  string // 雨量計の地上からの高さｍ
	ReportKind       string // 報告種別
	Unused           string // 未使用
	ObsStart         string // 観測開始日時
	ObsEnd           string // 観測終了年月日
	KanjiName        string // 漢字地点名
	KanjiOfficeName  string // 漢字官署名
	PrefBureauName   string // 都道府県振興局名
	Elevation        string // 標高(官署の高さ)
	Blank3           string // 空白
	SpecialRegional  string // 特別地域気象観測所
	VisibilityMeter  string // 視程計
	SnowGauge        string // 積雪計
	Type95or10       string // 95 型・10 型
	MountainOffice   string // 山岳官署
	PhenomenaStatus  string // 大気現象の観測状況
	Blank4           string // 空白
}

// Fields returns the 36 field values in record order.
func (r *Record) Fields() [36]string {
	return [36]string{
		r.StationNumber, r.Blank1, r.RegionCode, r.ObsCount, r.ObsFlags,
		r.WeatherPhenomena, r.PressureObsCount, r.Instrument,
		r.SunshineRecorder, r.SpecialDayOffice, r.AmedasPrefCode,
		r.StationCategory, r.Blank2, r.KanaName, r.RomajiName,
		r.Latitude, r.Longitude, r.AnemometerHeight, r.BarometerHeight,
		r.RainGaugeHeight, r.ReportKind, r.Unused, r.ObsStart, r.ObsEnd,
		r.KanjiName, r.KanjiOfficeName, r.PrefBureauName, r.Elevation,
		r.Blank3, r.SpecialRegional, r.VisibilityMeter, r.SnowGauge,
		r.Type95or10, r.MountainOffice, r.PhenomenaStatus, r.Blank4,
	}
}

// setField assigns the decoded value at field index i.
func (r *Record) setField(i int, v string) {
	fields := []*string{
		&r.StationNumber, &r.Blank1, &r.RegionCode, &r.ObsCount,
		&r.ObsFlags, &r.WeatherPhenomena, &r.PressureObsCount,
		&r.Instrument, &r.SunshineRecorder, &r.SpecialDayOffice,
		&r.AmedasPrefCode, &r.StationCategory, &r.Blank2, &r.KanaName,
		&r.RomajiName, &r.Latitude, &r.Longitude, &r.AnemometerHeight,
		&r.BarometerHeight, &r.RainGaugeHeight, &r.ReportKind,
		&r.Unused, &r.ObsStart, &r.ObsEnd, &r.KanjiName,
		&r.KanjiOfficeName, &r.PrefBureauName, &r.Elevation, &r.Blank3,
		&r.SpecialRegional, &r.VisibilityMeter, &r.SnowGauge,
		&r.Type95or10, &r.MountainOffice, &r.PhenomenaStatus, &r.Blank4,
	}
	*fields[i] = v
}

// ParseLine decodes a single index line. Slices past the end of a
// short line degrade to empty trailing fields; an undecodable byte
// sequence is a hard failure.
func ParseLine(line []byte) (*Record, error) {
	line = bytes.TrimRight(line, "\r\n")
	rec := &Record{}
	start := 0
	for i, width := range FieldWidths {
		end := start + width
		if start > len(line) {
			start = len(line)
		}
		if end > len(line) {
			end = len(line)
		}
		field, err := jptext.Decode(line[start:end], jptext.ShiftJIS)
		if err != nil {
			return nil, fmt.Errorf("field %d (%s): %w", i, Columns[i], err)
		}
		rec.setField(i, strings.TrimSpace(field))
		start += width
	}
	return rec, nil
}

// Read decodes every line of an index stream.
func Read(r io.Reader) ([]*Record, error) {
	var records []*Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for lineNo := 1; sc.Scan(); lineNo++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		rec, err := ParseLine(sc.Bytes())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return records, nil
}

// ReadFile decodes an index file from disk.
func ReadFile(path string) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// ToTable flattens records into a 36-column table with the verbatim
// agency column labels.
func ToTable(records []*Record) *tabular.Table {
	t := tabular.NewTable(Columns[:])
	for _, rec := range records {
		fields := rec.Fields()
		t.Rows = append(t.Rows, fields[:])
	}
	return t
}
