package services

import (
	"context"
	"log/slog"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
)

// recalcSet collects which derived aggregates a push batch touched, so
// recalculation runs once per batch instead of once per item.
type recalcSet struct {
	accounts    map[string]struct{}
	debts       map[string]struct{}
	funds       map[string]struct{}
	budgetIDs   map[string]struct{}
	goalIDs     map[string]struct{}
	txTouched   bool // any transaction change can affect any budget
	balancesRan bool // accounts or debts changed, so goal inputs moved
}

func newRecalcSet() *recalcSet {
	return &recalcSet{
		accounts:  make(map[string]struct{}),
		debts:     make(map[string]struct{}),
		funds:     make(map[string]struct{}),
		budgetIDs: make(map[string]struct{}),
		goalIDs:   make(map[string]struct{}),
	}
}

func addID(set map[string]struct{}, ids ...string) {
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
}

// noteChange registers one accepted mutation. doc is the new typed
// document (nil for deletes) and prev the previous one (nil for creates).
// Both sides of a retargeted reference end up in the set, so moving a
// transaction from account A to account B recomputes A and B.
func (r *recalcSet) noteChange(kind domain.EntityKind, entityID string, doc, prev any) {
	switch kind {
	case domain.KindAccount:
		addID(r.accounts, entityID)
	case domain.KindTransaction:
		r.txTouched = true
		if d, ok := doc.(*domain.TransactionDoc); ok {
			addID(r.accounts, d.AccountID, d.ToAccountID)
		}
		if p, ok := prev.(*domain.TransactionDoc); ok {
			addID(r.accounts, p.AccountID, p.ToAccountID)
		}
	case domain.KindBudget:
		addID(r.budgetIDs, entityID)
	case domain.KindGoal:
		addID(r.goalIDs, entityID)
	case domain.KindDebt:
		addID(r.debts, entityID)
	case domain.KindDebtInstallment:
		if d, ok := doc.(*domain.DebtInstallmentDoc); ok {
			addID(r.debts, d.DebtID)
		}
		if p, ok := prev.(*domain.DebtInstallmentDoc); ok {
			addID(r.debts, p.DebtID)
		}
	case domain.KindFund:
		addID(r.funds, entityID)
	case domain.KindFundPayment:
		if d, ok := doc.(*domain.FundPaymentDoc); ok {
			addID(r.funds, d.FundID)
		}
		if p, ok := prev.(*domain.FundPaymentDoc); ok {
			addID(r.funds, p.FundID)
		}
	}
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// flush recomputes every touched aggregate category, in dependency order
// (goals read account balances and debt remainders). A failing category
// is logged and skipped: the aggregate stays stale until the next
// successful trigger, and categories are independent of each other.
func (r *recalcSet) flush(ctx context.Context, s *syncService, walletID string) {
	run := func(name string, err error) {
		if err != nil {
			s.LogWarn(ctx, "Aggregate recalculation failed; values stay stale until the next trigger",
				slog.String("aggregate", name),
				slog.String("wallet_id", walletID),
				slog.String("error", err.Error()))
		}
	}

	if len(r.accounts) > 0 {
		run("account_balance", s.recalc.RecalcAccountBalances(ctx, walletID, keys(r.accounts)))
		r.balancesRan = true
	}
	if len(r.debts) > 0 {
		run("debt_remaining", s.recalc.RecalcDebts(ctx, walletID, keys(r.debts)))
		r.balancesRan = true
	}
	if len(r.funds) > 0 {
		run("fund_status", s.recalc.RecalcFunds(ctx, walletID, keys(r.funds)))
	}

	if r.txTouched {
		run("budget_spent", s.recalc.RecalcBudgets(ctx, walletID, nil))
	} else if len(r.budgetIDs) > 0 {
		run("budget_spent", s.recalc.RecalcBudgets(ctx, walletID, keys(r.budgetIDs)))
	}

	if r.balancesRan {
		run("goal_progress", s.recalc.RecalcGoals(ctx, walletID, nil))
	} else if len(r.goalIDs) > 0 {
		run("goal_progress", s.recalc.RecalcGoals(ctx, walletID, keys(r.goalIDs)))
	}
}
