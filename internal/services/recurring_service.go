package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// RecurringService manages recurring rules. Expanding them is RecurringProcessor's job.
type RecurringService struct {
	store RecurringRuleStore
}

func NewRecurringService(store RecurringRuleStore) *RecurringService {
	return &RecurringService{store: store}
}

// Create validates rule and checks that its accounts exist before storing it.
func (s *RecurringService) Create(ctx context.Context, rule core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := s.check(ctx, rule); err != nil {
		return core.RecurringTransaction{}, err
	}
	return s.store.CreateRecurringRule(ctx, rule)
}

// Update edits a rule with the same checks as Create. The stored watermark is
// kept, so occurrences already generated are never produced again.
func (s *RecurringService) Update(ctx context.Context, rule core.RecurringTransaction) (core.RecurringTransaction, error) {
	if _, err := s.store.GetRecurringRule(ctx, rule.ID); err != nil {
		return core.RecurringTransaction{}, err
	}
	if err := s.check(ctx, rule); err != nil {
		return core.RecurringTransaction{}, err
	}
	return s.store.UpdateRecurringRule(ctx, rule)
}

func (s *RecurringService) check(ctx context.Context, rule core.RecurringTransaction) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	ids := []string{rule.AccountID}
	if rule.Type == core.Transfer {
		ids = append(ids, rule.ToAccountID)
	}
	for _, id := range ids {
		if _, err := s.store.GetAccount(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownAccount, id)
			}
			return fmt.Errorf("check account: %w", err)
		}
	}
	return nil
}

// Toggle flips IsEnabled and returns the updated rule. The watermark is kept,
// so after re-enabling the next run catches up on the days it missed.
func (s *RecurringService) Toggle(ctx context.Context, id string) (core.RecurringTransaction, error) {
	rule, err := s.store.GetRecurringRule(ctx, id)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	rule.IsEnabled = !rule.IsEnabled
	if err := s.store.SetRecurringEnabled(ctx, id, rule.IsEnabled); err != nil {
		return core.RecurringTransaction{}, err
	}
	return rule, nil
}

func (s *RecurringService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteRecurringRule(ctx, id)
}
