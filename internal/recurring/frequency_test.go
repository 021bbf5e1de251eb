package recurring

import (
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		freq core.Frequency
		want time.Time
	}{
		{"daily", date(2024, 1, 31), core.Daily, date(2024, 2, 1)},
		{"weekly", date(2024, 1, 1), core.Weekly, date(2024, 1, 8)},
		{"biweekly", date(2024, 12, 25), core.Biweekly, date(2025, 1, 8)},
		{"monthly", date(2024, 1, 15), core.Monthly, date(2024, 2, 15)},
		{"monthly clamps to leap february", date(2024, 1, 31), core.Monthly, date(2024, 2, 29)},
		{"monthly clamps to short month", date(2023, 3, 31), core.Monthly, date(2023, 4, 30)},
		{"yearly", date(2023, 6, 1), core.Yearly, date(2024, 6, 1)},
		{"yearly from leap day", date(2024, 2, 29), core.Yearly, date(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.from, tt.freq)
			if err != nil {
				t.Fatalf("Next() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Next() = %s, want %s", got.Format(time.DateOnly), tt.want.Format(time.DateOnly))
			}
		})
	}
}

func TestNext_PreservesClock(t *testing.T) {
	from := time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC)
	got, err := Next(from, core.Monthly)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 2, 29, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Next() = %v, want %v", got, want)
	}
}

func TestGetStepper_Yearly(t *testing.T) {
	s, err := GetStepper(core.Yearly)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(YearStepper); !ok {
		t.Errorf("GetStepper(yearly) = %T, want YearStepper", s)
	}
}

func TestGetStepper_Unknown(t *testing.T) {
	_, err := GetStepper("fortnightly")
	if !errors.Is(err, ErrUnknownFrequency) {
		t.Errorf("GetStepper() error = %v, want ErrUnknownFrequency", err)
	}
}
