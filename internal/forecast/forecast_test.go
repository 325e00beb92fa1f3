package forecast

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"stock-forecast-dashboard/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func hist(closes ...string) []model.HistoricalPoint {
	out := make([]model.HistoricalPoint, len(closes))
	for i, c := range closes {
		out[i] = model.HistoricalPoint{Date: fmt.Sprintf("2025-01-%02d", i+1), Close: dec(c)}
	}
	return out
}

func preds(prices ...string) []model.ForecastPoint {
	out := make([]model.ForecastPoint, len(prices))
	for i, p := range prices {
		out[i] = model.ForecastPoint{Day: i + 1, Price: dec(p)}
	}
	return out
}

func TestBuildCatalogFirstModelWins(t *testing.T) {
	models := []model.ModelInfo{
		{Name: "A", Stocks: []string{"X", "Y"}},
		{Name: "B", Stocks: []string{"Y", "Z"}},
	}

	got := BuildCatalog(models)
	want := []model.Instrument{
		{Name: "X", ModelName: "A"},
		{Name: "Y", ModelName: "A"},
		{Name: "Z", ModelName: "B"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildCatalog = %v, want %v", got, want)
	}
}

func TestBuildCatalogDuplicateWithinModel(t *testing.T) {
	got := BuildCatalog([]model.ModelInfo{{Name: "A", Stocks: []string{"X", "X", "Y"}}})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "X" || got[1].Name != "Y" {
		t.Errorf("order = %v, want [X Y]", got)
	}
}

func TestBuildCatalogEmpty(t *testing.T) {
	got := BuildCatalog(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("BuildCatalog(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestPercentChange(t *testing.T) {
	got, err := PercentChange(dec("11"), dec("10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(dec("10")) {
		t.Errorf("PercentChange(11, 10) = %s, want 10", got)
	}

	got, err = PercentChange(dec("9"), dec("10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(dec("-10")) {
		t.Errorf("PercentChange(9, 10) = %s, want -10", got)
	}

	for _, base := range []string{"0", "-1"} {
		if _, err := PercentChange(dec("1"), dec(base)); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("PercentChange(1, %s) error = %v, want ErrInvalidInput", base, err)
		}
	}
}

func TestMergeTimeline(t *testing.T) {
	history := hist("10", "11", "12", "13", "14")
	forecast := preds("15", "16")

	points := MergeTimeline(history, 3, forecast)
	if len(points) != 5 {
		t.Fatalf("len = %d, want 5", len(points))
	}

	for i, p := range points {
		if p.Index != i {
			t.Errorf("points[%d].Index = %d", i, p.Index)
		}
		switch p.Origin {
		case model.OriginHistorical:
			if p.Actual == nil || p.Predicted != nil {
				t.Errorf("historical point %d has actual=%v predicted=%v", i, p.Actual, p.Predicted)
			}
		case model.OriginPrediction:
			if p.Predicted == nil || p.Actual != nil {
				t.Errorf("prediction point %d has actual=%v predicted=%v", i, p.Actual, p.Predicted)
			}
		default:
			t.Errorf("points[%d].Origin = %q", i, p.Origin)
		}
	}

	if points[0].Date != "2025-01-03" || !points[0].Actual.Equal(dec("12")) {
		t.Errorf("first point = %s %v, want 2025-01-03 12", points[0].Date, points[0].Actual)
	}
	if points[3].Date != "Day +1" || !points[3].Predicted.Equal(dec("15")) {
		t.Errorf("first prediction = %s %v, want Day +1 15", points[3].Date, points[3].Predicted)
	}
	if points[4].Date != "Day +2" {
		t.Errorf("last label = %q, want Day +2", points[4].Date)
	}
}

func TestMergeTimelineShortHistory(t *testing.T) {
	points := MergeTimeline(hist("10", "11"), 60, preds("12"))
	if len(points) != 3 {
		t.Fatalf("len = %d, want min(60, 2)+1 = 3", len(points))
	}
	if points[2].Index != 2 {
		t.Errorf("prediction index = %d, want 2", points[2].Index)
	}
}

func TestMergeTimelineEmpty(t *testing.T) {
	if points := MergeTimeline(nil, 60, nil); len(points) != 0 {
		t.Errorf("len = %d, want 0", len(points))
	}
	points := MergeTimeline(nil, 60, preds("5"))
	if len(points) != 1 || points[0].Index != 0 {
		t.Errorf("forecast only = %v", points)
	}
}

func TestBuildLedgerExample(t *testing.T) {
	history := []model.HistoricalPoint{
		{Date: "d1", Close: dec("10")},
		{Date: "d2", Close: dec("11")},
	}
	forecast := []model.ForecastPoint{{Day: 1, Price: dec("12")}}

	rows, err := BuildLedger(history, 30, forecast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len = %d, want 3", len(rows))
	}

	if rows[0].Date != "Day +1" || rows[0].Origin != model.OriginPrediction {
		t.Errorf("rows[0] = %s/%s, want Day +1/prediction", rows[0].Date, rows[0].Origin)
	}
	if !rows[0].Change.Valid || !rows[0].Change.Decimal.Round(2).Equal(dec("9.09")) {
		t.Errorf("Day +1 change = %v, want 9.09", rows[0].Change)
	}
	if !rows[0].Delta.Decimal.Equal(dec("1")) {
		t.Errorf("Day +1 delta = %v, want 1", rows[0].Delta)
	}

	if rows[1].Date != "d2" || !rows[1].Change.Valid || !rows[1].Change.Decimal.Equal(dec("10")) {
		t.Errorf("d2 row = %+v, want change 10", rows[1])
	}
	if rows[2].Date != "d1" || rows[2].Change.Valid || rows[2].Delta.Valid {
		t.Errorf("d1 row = %+v, want no change", rows[2])
	}
}

func TestBuildLedgerOrderAndChain(t *testing.T) {
	rows, err := BuildLedger(hist("10", "20", "40", "50"), 3, preds("100", "50", "75"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantDates := []string{"Day +3", "Day +2", "Day +1", "2025-01-04", "2025-01-03", "2025-01-02"}
	wantChange := []string{"50", "-50", "100", "25", "100", ""}
	if len(rows) != len(wantDates) {
		t.Fatalf("len = %d, want %d", len(rows), len(wantDates))
	}
	for i, r := range rows {
		if r.Date != wantDates[i] {
			t.Errorf("rows[%d].Date = %q, want %q", i, r.Date, wantDates[i])
		}
		if wantChange[i] == "" {
			if r.Change.Valid {
				t.Errorf("rows[%d].Change = %s, want none", i, r.Change.Decimal)
			}
			continue
		}
		if !r.Change.Valid || !r.Change.Decimal.Equal(dec(wantChange[i])) {
			t.Errorf("rows[%d].Change = %v, want %s", i, r.Change, wantChange[i])
		}
	}
}

func TestBuildLedgerSeamUsesFullHistory(t *testing.T) {
	// window of 1 still uses the last close as the seam baseline
	rows, err := BuildLedger(hist("10", "20"), 1, preds("30"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if !rows[0].Change.Decimal.Equal(dec("50")) {
		t.Errorf("Day +1 change = %s, want 50", rows[0].Change.Decimal)
	}
	if rows[1].Change.Valid {
		t.Errorf("only windowed row should have no change, got %s", rows[1].Change.Decimal)
	}
}

func TestBuildLedgerEmptyForecast(t *testing.T) {
	rows, err := BuildLedger(hist("10", "11", "12"), 30, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2025-01-03", "2025-01-02", "2025-01-01"}
	if len(rows) != len(want) {
		t.Fatalf("len = %d, want %d", len(rows), len(want))
	}
	for i, r := range rows {
		if r.Date != want[i] || r.Origin != model.OriginHistorical {
			t.Errorf("rows[%d] = %s/%s, want %s/historical", i, r.Date, r.Origin, want[i])
		}
	}
}

func TestBuildLedgerEmptyHistory(t *testing.T) {
	rows, err := BuildLedger(nil, 30, preds("10", "11"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if !rows[0].Change.Valid {
		t.Error("Day +2 should have a change against Day +1")
	}
	if rows[1].Change.Valid {
		t.Errorf("Day +1 without history should have no change, got %s", rows[1].Change.Decimal)
	}
}

func TestBuildLedgerForecastGap(t *testing.T) {
	forecast := []model.ForecastPoint{
		{Day: 3, Price: dec("12")},
		{Day: 1, Price: dec("10")},
	}
	rows, err := BuildLedger(hist("8"), 30, forecast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].Date != "Day +3" || !rows[0].Change.Decimal.Equal(dec("20")) {
		t.Errorf("rows[0] = %s %v, want Day +3 change 20", rows[0].Date, rows[0].Change)
	}
	if rows[1].Date != "Day +1" || !rows[1].Change.Decimal.Equal(dec("25")) {
		t.Errorf("rows[1] = %s %v, want Day +1 change 25", rows[1].Date, rows[1].Change)
	}
}

func TestBuildLedgerInvalidPredecessor(t *testing.T) {
	rows, err := BuildLedger(hist("10", "0", "12"), 30, preds("13"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}

	// 2025-01-03 has a zero predecessor and is dropped
	want := []string{"Day +1", "2025-01-02", "2025-01-01"}
	if len(rows) != len(want) {
		t.Fatalf("len = %d, want %d: %+v", len(rows), len(want), rows)
	}
	for i, r := range rows {
		if r.Date != want[i] {
			t.Errorf("rows[%d].Date = %q, want %q", i, r.Date, want[i])
		}
	}

	_, err = BuildLedger(hist("-5"), 30, preds("1"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative last close error = %v, want ErrInvalidInput", err)
	}
}

func TestBuildLedgerIdempotent(t *testing.T) {
	history := hist("10", "11", "9.5", "12")
	forecast := preds("12.5", "13", "12.75")

	first, err1 := BuildLedger(history, 3, forecast)
	second, err2 := BuildLedger(history, 3, forecast)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("BuildLedger not idempotent:\n  %+v\n  %+v", first, second)
	}
	if !reflect.DeepEqual(history, hist("10", "11", "9.5", "12")) {
		t.Error("BuildLedger mutated its input")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize("MAYBANK", model.StockPrediction{
		CurrentPrice:  dec("9.8"),
		PriceChange:   dec("0.2"),
		PercentChange: dec("2.08"),
	})
	if s.Instrument != "MAYBANK" || !s.CurrentPrice.Equal(dec("9.8")) {
		t.Errorf("summary = %+v", s)
	}
	if !s.Change.Absolute.Equal(dec("0.2")) || !s.Change.Percent.Equal(dec("2.08")) {
		t.Errorf("summary change = %+v", s.Change)
	}
}
