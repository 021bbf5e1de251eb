package finance

import (
	"encoding/json"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestDailyTrend(t *testing.T) {
	txs := []core.Transaction{
		income("a", "salary", 100, day(2024, 3, 1)),
		expense("a", "food", 30, day(2024, 3, 1)),
		expense("a", "food", 20, day(2024, 3, 3)),
		income("a", "salary", 999, day(2024, 2, 29)), // outside the window
	}
	points := DailyTrend(txs, day(2024, 3, 1), day(2024, 3, 3))
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	want := []struct {
		date    string
		balance int64
	}{
		{"2024-03-01", 70},
		{"2024-03-02", 70},
		{"2024-03-03", 50},
	}
	for i, w := range want {
		if points[i].Date != w.date || !points[i].Balance.Equal(amt(w.balance)) {
			t.Errorf("point %d = %s %s, want %s %d", i, points[i].Date, points[i].Balance, w.date, w.balance)
		}
	}

	again := DailyTrend(txs, day(2024, 3, 1), day(2024, 3, 3))
	if !again[2].Balance.Equal(points[2].Balance) {
		t.Error("trend must be recomputed identically on each call")
	}
}

func TestMonthlyTrend(t *testing.T) {
	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		income("a", "salary", 1000, day(2024, 1, 5)),
		expense("a", "rent", 400, day(2024, 2, 5)),
		expense("a", "food", 100, day(2024, 3, 5)),
		transfer("a", "b", 500, day(2024, 3, 6)),
	}
	points := MonthlyTrend(txs, 3, now)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	labels := []string{"2024-01", "2024-02", "2024-03"}
	balances := []int64{1000, 600, 500}
	for i := range points {
		if points[i].Date != labels[i] || !points[i].Balance.Equal(amt(balances[i])) {
			t.Errorf("point %d = %s %s", i, points[i].Date, points[i].Balance)
		}
	}
}

func TestTrend_EmptySeriesEncodesAsArray(t *testing.T) {
	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		points []TrendPoint
	}{
		{"daily inverted window", DailyTrend(nil, day(2024, 3, 3), day(2024, 3, 1))},
		{"monthly zero months", MonthlyTrend(nil, 0, now)},
		{"monthly negative months", MonthlyTrend(nil, -2, now)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.points == nil {
				t.Fatal("got nil series")
			}
			raw, err := json.Marshal(tt.points)
			if err != nil {
				t.Fatal(err)
			}
			if string(raw) != "[]" {
				t.Errorf("json = %s, want []", raw)
			}
		})
	}
}
