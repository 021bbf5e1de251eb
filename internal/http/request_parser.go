// Package http exposes the finance core as a JSON API.
//
// This file holds the request decoding helpers shared by every handler:
// JSON bodies, amount fields and date query parameters.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const maxBodyBytes = 1 << 20

// ErrMalformed marks a request that could not be decoded.
var ErrMalformed = errors.New("malformed request")

// decodeJSON reads one JSON object from the request body into v. Unknown
// fields and trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrMalformed)
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", ErrMalformed)
	}
	return nil
}

// amountInput accepts an amount as a JSON string ("12,50") or number (12.5).
type amountInput string

func (a *amountInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a string or number")
	}
	*a = amountInput(n.String())
	return nil
}

// Positive parses a strictly positive amount rounded to two places.
func (a amountInput) Positive() (decimal.Decimal, error) {
	return core.ParseAmount(string(a))
}

// Signed parses an optional signed amount; empty means zero.
func (a amountInput) Signed() (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(string(a)), ",", ".")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", core.ErrInvalidAmount, a)
	}
	return d.Round(2), nil
}

// parseDate accepts YYYY-MM-DD (midnight in loc) or an RFC 3339 timestamp.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
}

// parseOptionalDate returns nil for an empty value.
func parseOptionalDate(s string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDate(s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseRange reads from/to query parameters. Missing bounds default to the
// month containing now.
func parseRange(q url.Values, now time.Time) (from, to time.Time, err error) {
	month := core.ThisMonth(now)
	from, to = month.Start, month.End
	if v := q.Get("from"); v != "" {
		if from, err = parseDate(v, now.Location()); err != nil {
			return
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = parseDate(v, now.Location()); err != nil {
			return
		}
	}
	if to.Before(from) {
		err = fmt.Errorf("%w: 'to' is before 'from'", core.ErrInvalidDate)
	}
	return
}

// parseCount reads a positive integer query parameter bounded by max.
func parseCount(q url.Values, key string, def, max int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > max {
		return 0, fmt.Errorf("%w: %s must be between 1 and %d", ErrMalformed, key, max)
	}
	return n, nil
}

// sanitizeInput removes control characters except tab, newline and carriage return.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
