package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	portsrepo "github.com/alaalsalam/hisabi-backend/internal/core/ports/repositories"
	portssvc "github.com/alaalsalam/hisabi-backend/internal/core/ports/services"
)

// recalcService implements the RecalcSvcFacade interface. Every method is
// a pure, deterministic recomputation of one aggregate category from its
// wallet-scoped source rows: re-running with no intervening writes leaves
// the store untouched.
type recalcService struct {
	BaseService
	entityRepo portsrepo.EntityRepositoryFacade
	now        func() time.Time
}

// NewRecalcService creates a new recalc service with the provided dependencies.
func NewRecalcService(entityRepo portsrepo.EntityRepositoryFacade) portssvc.RecalcSvcFacade {
	return &recalcService{
		entityRepo: entityRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.RecalcSvcFacade = (*recalcService)(nil)

// docRow pairs a stored entity with its decoded typed document.
type docRow struct {
	entity domain.SyncedEntity
	doc    any
}

// loadDocs fetches all non-deleted rows of a kind in a wallet and decodes
// them. Rows that fail to decode are skipped, not fatal.
func (s *recalcService) loadDocs(ctx context.Context, walletID string, kind domain.EntityKind) ([]docRow, error) {
	entities, err := s.entityRepo.ListEntities(ctx, domain.WalletScope(walletID), kind)
	if err != nil {
		return nil, err
	}
	rows := make([]docRow, 0, len(entities))
	for _, e := range entities {
		doc, err := domain.DecodeDoc(kind, e.Payload)
		if err != nil {
			s.LogWarn(ctx, "Skipping undecodable row during recalculation",
				slog.String("kind", string(kind)),
				slog.String("entity_id", e.EntityID),
				slog.String("error", err.Error()))
			continue
		}
		rows = append(rows, docRow{entity: e, doc: doc})
	}
	return rows, nil
}

// writeAggregate persists a recalculated document, bumping the row
// version so the change surfaces to other devices on pull.
func (s *recalcService) writeAggregate(ctx context.Context, walletID string, row docRow) error {
	payload, err := domain.EncodeDoc(row.doc)
	if err != nil {
		return err
	}
	return s.entityRepo.UpdateAggregate(ctx, domain.WalletScope(walletID), row.entity.Kind, row.entity.EntityID, payload, s.now())
}

// targetSet turns an id list into a membership test; empty means all.
func targetSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func max0(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// RecalcAccountBalances recomputes balance = opening + income − expense −
// outgoing transfers + incoming transfers over the wallet's non-deleted
// transactions. Both legs of a transfer see the transaction, so
// retargeting a transfer recomputes both the old and new account.
func (s *recalcService) RecalcAccountBalances(ctx context.Context, walletID string, accountIDs []string) error {
	accounts, err := s.loadDocs(ctx, walletID, domain.KindAccount)
	if err != nil {
		return err
	}
	transactions, err := s.loadDocs(ctx, walletID, domain.KindTransaction)
	if err != nil {
		return err
	}

	targets := targetSet(accountIDs)
	for _, row := range accounts {
		if targets != nil && !targets[row.entity.EntityID] {
			continue
		}
		acc, ok := row.doc.(*domain.AccountDoc)
		if !ok {
			continue
		}

		balance := acc.OpeningBalance
		for _, txRow := range transactions {
			tx, ok := txRow.doc.(*domain.TransactionDoc)
			if !ok {
				continue
			}
			switch tx.TxType {
			case domain.TxIncome:
				if tx.AccountID == row.entity.EntityID {
					balance = balance.Add(tx.Amount)
				}
			case domain.TxExpense:
				if tx.AccountID == row.entity.EntityID {
					balance = balance.Sub(tx.Amount)
				}
			case domain.TxTransfer:
				if tx.AccountID == row.entity.EntityID {
					balance = balance.Sub(tx.Amount)
				}
				if tx.ToAccountID == row.entity.EntityID {
					balance = balance.Add(tx.Amount)
				}
			}
		}

		if balance.Equal(acc.Balance) {
			continue
		}
		acc.Balance = balance
		if err := s.writeAggregate(ctx, walletID, row); err != nil {
			s.LogWarn(ctx, "Failed to persist account balance",
				slog.String("account_id", row.entity.EntityID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// RecalcBudgets recomputes spent over non-deleted expense transactions
// inside the budget window [start, end], matching the budget's category
// and currency when those scopes are set. The base-currency amount wins
// when present.
func (s *recalcService) RecalcBudgets(ctx context.Context, walletID string, budgetIDs []string) error {
	budgets, err := s.loadDocs(ctx, walletID, domain.KindBudget)
	if err != nil {
		return err
	}
	transactions, err := s.loadDocs(ctx, walletID, domain.KindTransaction)
	if err != nil {
		return err
	}

	targets := targetSet(budgetIDs)
	for _, row := range budgets {
		if targets != nil && !targets[row.entity.EntityID] {
			continue
		}
		budget, ok := row.doc.(*domain.BudgetDoc)
		if !ok {
			continue
		}

		spent := decimal.Zero
		for _, txRow := range transactions {
			tx, ok := txRow.doc.(*domain.TransactionDoc)
			if !ok || tx.TxType != domain.TxExpense {
				continue
			}
			if budget.CategoryID != "" && tx.CategoryID != budget.CategoryID {
				continue
			}
			if budget.Currency != "" && tx.Currency != budget.Currency {
				continue
			}
			if tx.Date.Before(budget.StartDate) || tx.Date.After(budget.EndDate) {
				continue
			}
			spent = spent.Add(tx.EffectiveAmount())
		}

		if spent.Equal(budget.Spent) {
			continue
		}
		budget.Spent = spent
		if err := s.writeAggregate(ctx, walletID, row); err != nil {
			s.LogWarn(ctx, "Failed to persist budget spend",
				slog.String("budget_id", row.entity.EntityID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// RecalcGoals recomputes progress from the goal's funding source: the
// linked debt's remaining for pay_debt goals, the linked account's
// balance otherwise. A goal whose source row cannot be resolved is
// skipped, not fatal.
func (s *recalcService) RecalcGoals(ctx context.Context, walletID string, goalIDs []string) error {
	goals, err := s.loadDocs(ctx, walletID, domain.KindGoal)
	if err != nil {
		return err
	}
	accounts, err := s.loadDocs(ctx, walletID, domain.KindAccount)
	if err != nil {
		return err
	}
	debts, err := s.loadDocs(ctx, walletID, domain.KindDebt)
	if err != nil {
		return err
	}

	accountByID := make(map[string]*domain.AccountDoc, len(accounts))
	for _, row := range accounts {
		if acc, ok := row.doc.(*domain.AccountDoc); ok {
			accountByID[row.entity.EntityID] = acc
		}
	}
	debtByID := make(map[string]*domain.DebtDoc, len(debts))
	for _, row := range debts {
		if debt, ok := row.doc.(*domain.DebtDoc); ok {
			debtByID[row.entity.EntityID] = debt
		}
	}

	targets := targetSet(goalIDs)
	for _, row := range goals {
		if targets != nil && !targets[row.entity.EntityID] {
			continue
		}
		goal, ok := row.doc.(*domain.GoalDoc)
		if !ok {
			continue
		}

		var current decimal.Decimal
		if goal.GoalType == domain.GoalPayDebt {
			debt, ok := debtByID[goal.LinkedDebtID]
			if !ok {
				continue
			}
			current = max0(goal.Target.Sub(debt.Remaining))
		} else {
			account, ok := accountByID[goal.LinkedAccountID]
			if !ok {
				continue
			}
			current = account.Balance
		}

		remaining := max0(goal.Target.Sub(current))
		progress := decimal.Zero
		if !goal.Target.IsZero() {
			progress = current.Div(goal.Target).Mul(decimal.NewFromInt(100))
		}

		if current.Equal(goal.Current) && remaining.Equal(goal.Remaining) && progress.Equal(goal.Progress) {
			continue
		}
		goal.Current = current
		goal.Remaining = remaining
		goal.Progress = progress
		if err := s.writeAggregate(ctx, walletID, row); err != nil {
			s.LogWarn(ctx, "Failed to persist goal progress",
				slog.String("goal_id", row.entity.EntityID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// RecalcDebts recomputes remaining = max(principal − Σ paid installments,
// 0). A fully repaid debt closes; a closed debt with money still owed
// reopens.
func (s *recalcService) RecalcDebts(ctx context.Context, walletID string, debtIDs []string) error {
	debts, err := s.loadDocs(ctx, walletID, domain.KindDebt)
	if err != nil {
		return err
	}
	installments, err := s.loadDocs(ctx, walletID, domain.KindDebtInstallment)
	if err != nil {
		return err
	}

	paidByDebt := make(map[string]decimal.Decimal)
	for _, row := range installments {
		inst, ok := row.doc.(*domain.DebtInstallmentDoc)
		if !ok || inst.PaidAt == nil {
			continue
		}
		paidByDebt[inst.DebtID] = paidByDebt[inst.DebtID].Add(inst.Amount)
	}

	targets := targetSet(debtIDs)
	for _, row := range debts {
		if targets != nil && !targets[row.entity.EntityID] {
			continue
		}
		debt, ok := row.doc.(*domain.DebtDoc)
		if !ok {
			continue
		}

		remaining := max0(debt.Principal.Sub(paidByDebt[row.entity.EntityID]))
		status := debt.Status
		if remaining.IsZero() {
			status = domain.DebtClosed
		} else if status == domain.DebtClosed {
			status = domain.DebtActive
		}
		if status == "" {
			status = domain.DebtActive
		}

		if remaining.Equal(debt.Remaining) && status == debt.Status {
			continue
		}
		debt.Remaining = remaining
		debt.Status = status
		if err := s.writeAggregate(ctx, walletID, row); err != nil {
			s.LogWarn(ctx, "Failed to persist debt remaining",
				slog.String("debt_id", row.entity.EntityID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// RecalcFunds derives each rotating-fund payment's state from paid_at and
// due_date, then marks the fund completed only once every payment is
// terminal.
func (s *recalcService) RecalcFunds(ctx context.Context, walletID string, fundIDs []string) error {
	funds, err := s.loadDocs(ctx, walletID, domain.KindFund)
	if err != nil {
		return err
	}
	payments, err := s.loadDocs(ctx, walletID, domain.KindFundPayment)
	if err != nil {
		return err
	}

	now := s.now()
	targets := targetSet(fundIDs)

	paymentsByFund := make(map[string][]docRow)
	for _, row := range payments {
		if payment, ok := row.doc.(*domain.FundPaymentDoc); ok {
			paymentsByFund[payment.FundID] = append(paymentsByFund[payment.FundID], row)
		}
	}

	for _, row := range funds {
		if targets != nil && !targets[row.entity.EntityID] {
			continue
		}
		fund, ok := row.doc.(*domain.FundDoc)
		if !ok {
			continue
		}

		fundPayments := paymentsByFund[row.entity.EntityID]
		allPaid := len(fundPayments) > 0
		for _, paymentRow := range fundPayments {
			payment := paymentRow.doc.(*domain.FundPaymentDoc)

			status := domain.PaymentUpcoming
			switch {
			case payment.PaidAt != nil:
				status = domain.PaymentPaid
			case payment.DueDate.Before(now):
				status = domain.PaymentOverdue
			}
			if status != domain.PaymentPaid {
				allPaid = false
			}

			if status == payment.Status {
				continue
			}
			payment.Status = status
			if err := s.writeAggregate(ctx, walletID, paymentRow); err != nil {
				s.LogWarn(ctx, "Failed to persist fund payment state",
					slog.String("payment_id", paymentRow.entity.EntityID),
					slog.String("error", err.Error()))
			}
		}

		status := domain.FundActive
		if allPaid {
			status = domain.FundCompleted
		}
		if status == fund.Status {
			continue
		}
		fund.Status = status
		if err := s.writeAggregate(ctx, walletID, row); err != nil {
			s.LogWarn(ctx, "Failed to persist fund status",
				slog.String("fund_id", row.entity.EntityID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// RecalcWallet rebuilds every aggregate category of one wallet. Used by
// the administrative rebuild tooling; categories stay independent, so one
// failing category does not stop the others.
func (s *recalcService) RecalcWallet(ctx context.Context, walletID string) error {
	var errs []error
	if err := s.RecalcAccountBalances(ctx, walletID, nil); err != nil {
		errs = append(errs, err)
	}
	if err := s.RecalcDebts(ctx, walletID, nil); err != nil {
		errs = append(errs, err)
	}
	if err := s.RecalcFunds(ctx, walletID, nil); err != nil {
		errs = append(errs, err)
	}
	if err := s.RecalcBudgets(ctx, walletID, nil); err != nil {
		errs = append(errs, err)
	}
	if err := s.RecalcGoals(ctx, walletID, nil); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
