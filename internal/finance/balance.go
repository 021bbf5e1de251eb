// Package finance derives balances, summaries, breakdowns and insights from a
// snapshot of the transaction log. Every function is pure: callers pass data in
// and get data back, nothing is read from storage and nothing is cached here.
package finance

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// NetWorthSummary is the asset/liability split of all accounts.
type NetWorthSummary struct {
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	NetWorth         decimal.Decimal `json:"netWorth"`
}

// effect returns the signed change tx causes on accountID.
func effect(accountID string, tx core.Transaction) decimal.Decimal {
	switch tx.Type {
	case core.Income:
		if tx.AccountID == accountID {
			return tx.Amount
		}
	case core.Expense:
		if tx.AccountID == accountID {
			return tx.Amount.Neg()
		}
	case core.Transfer:
		if tx.AccountID == accountID {
			return tx.Amount.Neg()
		}
		if tx.ToAccountID == accountID {
			return tx.Amount
		}
	}
	return decimal.Zero
}

// AccountBalance folds the whole log into the balance of one account.
// Accounts no transaction refers to have a zero balance.
func AccountBalance(accountID string, txs []core.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range txs {
		balance = balance.Add(effect(accountID, tx))
	}
	return balance
}

// AllBalances computes every account balance in a single pass over txs.
// Transactions that name accounts outside the given list are ignored.
func AllBalances(accounts []core.Account, txs []core.Transaction) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		balances[a.ID] = decimal.Zero
	}
	apply := func(id string, delta decimal.Decimal) {
		if cur, ok := balances[id]; ok {
			balances[id] = cur.Add(delta)
		}
	}
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			apply(tx.AccountID, tx.Amount)
		case core.Expense:
			apply(tx.AccountID, tx.Amount.Neg())
		case core.Transfer:
			apply(tx.AccountID, tx.Amount.Neg())
			apply(tx.ToAccountID, tx.Amount)
		}
	}
	return balances
}

// TotalAssets sums non-liability balances, flooring each overdrawn asset at zero.
func TotalAssets(accounts []core.Account, txs []core.Transaction) decimal.Decimal {
	return NetWorth(accounts, txs).TotalAssets
}

// TotalLiabilities sums the absolute balances of liability accounts.
func TotalLiabilities(accounts []core.Account, txs []core.Transaction) decimal.Decimal {
	return NetWorth(accounts, txs).TotalLiabilities
}

// NetWorth returns assets, liabilities and their difference.
func NetWorth(accounts []core.Account, txs []core.Transaction) NetWorthSummary {
	return netWorthFromBalances(accounts, AllBalances(accounts, txs))
}

func netWorthFromBalances(accounts []core.Account, balances map[string]decimal.Decimal) NetWorthSummary {
	assets, liabilities := decimal.Zero, decimal.Zero
	for _, a := range accounts {
		b := balances[a.ID]
		if a.IsLiability {
			liabilities = liabilities.Add(b.Abs())
			continue
		}
		assets = assets.Add(decimal.Max(decimal.Zero, b))
	}
	return NetWorthSummary{
		TotalAssets:      assets,
		TotalLiabilities: liabilities,
		NetWorth:         assets.Sub(liabilities),
	}
}
