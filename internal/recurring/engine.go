package recurring

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// DefaultMaxOccurrences bounds how many occurrences one rule may materialize per call.
const DefaultMaxOccurrences = 100

var (
	ErrOccurrenceCap  = errors.New("occurrence cap reached")
	ErrStalledStepper = errors.New("stepper did not advance")
)

// occurrenceNamespace scopes the deterministic ids of generated transactions.
var occurrenceNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("fintrack:recurring-occurrence"))

// CapError lists the rules that still had due occurrences when the cap stopped them.
// Their watermark was advanced to the last generated occurrence, so the next
// call continues where this one stopped.
type CapError struct {
	RuleIDs []string
	Max     int
}

func (e *CapError) Error() string {
	return fmt.Sprintf("%s (max %d) for rules: %s", ErrOccurrenceCap, e.Max, strings.Join(e.RuleIDs, ", "))
}

func (e *CapError) Is(target error) bool { return target == ErrOccurrenceCap }

// Result is the pure outcome of a processing run. Persisting it is the caller's job.
type Result struct {
	NewTransactions []core.Transaction
	UpdatedRules    []core.RecurringTransaction
}

// Engine materializes due occurrences of recurring rules.
type Engine struct {
	MaxOccurrences int
	now            func() time.Time
}

// NewEngine returns an engine with the given cap; values below 1 use DefaultMaxOccurrences.
func NewEngine(maxOccurrences int) *Engine {
	if maxOccurrences < 1 {
		maxOccurrences = DefaultMaxOccurrences
	}
	return &Engine{MaxOccurrences: maxOccurrences, now: time.Now}
}

// OccurrenceID derives the id of the transaction generated for ruleID on date.
// The same occurrence always gets the same id.
func OccurrenceID(ruleID string, date time.Time) string {
	return uuid.NewSHA1(occurrenceNamespace, []byte(ruleID+"/"+date.Format(time.DateOnly))).String()
}

// civil strips location and clock so dates compare by calendar day.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func onOrBefore(a, b time.Time) bool { return !civil(a).After(civil(b)) }

func pastEnd(r core.RecurringTransaction, t time.Time) bool {
	return r.EndDate != nil && civil(t).After(civil(*r.EndDate))
}

// anchor is the first occurrence not yet materialized.
func anchor(r core.RecurringTransaction, s Stepper) time.Time {
	if r.LastProcessed == nil {
		return r.StartDate
	}
	return s.Next(*r.LastProcessed)
}

// Process generates every occurrence due on or before today for each enabled
// rule. Disabled rules are skipped without touching their watermark. The
// returned Result is valid even when err is non-nil: a *CapError reports
// truncated rules, and rules with an unknown frequency are reported and skipped.
func (e *Engine) Process(rules []core.RecurringTransaction, today time.Time) (Result, error) {
	var (
		res    Result
		capped []string
		errs   []error
		now    = e.now()
	)

	for _, rule := range rules {
		if !rule.IsEnabled {
			continue
		}
		if !onOrBefore(rule.StartDate, today) {
			continue
		}
		stepper, err := GetStepper(rule.Frequency)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", rule.ID, err))
			continue
		}

		next := anchor(rule, stepper)
		var last time.Time
		count := 0
		for onOrBefore(next, today) && count < e.MaxOccurrences {
			if pastEnd(rule, next) {
				break
			}
			res.NewTransactions = append(res.NewTransactions, materialize(rule, next, now))
			last = next
			count++
			next = stepper.Next(next)
		}

		if count == e.MaxOccurrences && onOrBefore(next, today) && !pastEnd(rule, next) {
			capped = append(capped, rule.ID)
		}
		if count > 0 {
			updated := rule
			updated.LastProcessed = &last
			updated.UpdatedAt = now
			res.UpdatedRules = append(res.UpdatedRules, updated)
		}
	}

	if len(capped) > 0 {
		errs = append([]error{&CapError{RuleIDs: capped, Max: e.MaxOccurrences}}, errs...)
	}
	return res, errors.Join(errs...)
}

func materialize(r core.RecurringTransaction, date, now time.Time) core.Transaction {
	return core.Transaction{
		ID:                   OccurrenceID(r.ID, date),
		Type:                 r.Type,
		Amount:               r.Amount,
		AccountID:            r.AccountID,
		ToAccountID:          r.ToAccountID,
		CategoryID:           r.CategoryID,
		Date:                 date,
		Note:                 r.Note,
		RecurringID:          r.ID,
		IsRecurringGenerated: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Upcoming previews up to count occurrences after the watermark, or after the
// start date when the rule never ran, stopping at the rule's end date. It has
// no side effects.
func Upcoming(r core.RecurringTransaction, count int) ([]time.Time, error) {
	if !r.IsEnabled || count <= 0 {
		return nil, nil
	}
	stepper, err := GetStepper(r.Frequency)
	if err != nil {
		return nil, err
	}
	from := r.StartDate
	if r.LastProcessed != nil {
		from = *r.LastProcessed
	}
	out := make([]time.Time, 0, count)
	for next := stepper.Next(from); len(out) < count; next = stepper.Next(next) {
		if pastEnd(r, next) {
			break
		}
		out = append(out, next)
	}
	return out, nil
}

// OccurrencesBetween lists the occurrences of r, anchored on its start date,
// that fall within [start, end] and within the rule's own active window.
func OccurrencesBetween(r core.RecurringTransaction, start, end time.Time) ([]time.Time, error) {
	stepper, err := GetStepper(r.Frequency)
	if err != nil {
		return nil, err
	}
	var out []time.Time
	for t := r.StartDate; onOrBefore(t, end) && !pastEnd(r, t); {
		if onOrBefore(start, t) {
			out = append(out, t)
		}
		next := stepper.Next(t)
		if !civil(next).After(civil(t)) {
			return nil, fmt.Errorf("rule %s: %w", r.ID, ErrStalledStepper)
		}
		t = next
	}
	return out, nil
}

// EstimateTotal forecasts the recurring amount expected within [start, end].
// It ignores watermarks. An empty typ includes every type.
func EstimateTotal(rules []core.RecurringTransaction, start, end time.Time, typ core.TransactionType) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, r := range rules {
		if !r.IsEnabled || (typ != "" && r.Type != typ) {
			continue
		}
		dates, err := OccurrencesBetween(r, start, end)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(r.Amount.Mul(decimal.NewFromInt(int64(len(dates)))))
	}
	return total, nil
}
