package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Typed payload schemas, one struct per entity kind. Field lists are
// explicit and resolved at compile time; there is no runtime metadata
// lookup. Fields marked "derived" are owned by the recalc engine and are
// overwritten on every accepted client write.

// WalletDoc mirrors the wallet row into the sync stream so devices
// receive renames and archival like any other change.
type WalletDoc struct {
	Name     string       `json:"name"`
	Currency string       `json:"currency,omitempty"`
	Status   WalletStatus `json:"status,omitempty"`
}

// AccountDoc represents a money account (cash, bank, card, ...).
type AccountDoc struct {
	Name           string          `json:"name"`
	AccountType    string          `json:"account_type,omitempty"`
	Currency       string          `json:"currency,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Icon           string          `json:"icon,omitempty"`
	Color          string          `json:"color,omitempty"`
	IsArchived     bool            `json:"is_archived,omitempty"`

	Balance decimal.Decimal `json:"balance"` // derived
}

// CategoryDoc classifies transactions.
type CategoryDoc struct {
	Name             string `json:"name"`
	CategoryType     string `json:"category_type,omitempty"` // income | expense
	Icon             string `json:"icon,omitempty"`
	Color            string `json:"color,omitempty"`
	ParentCategoryID string `json:"parent_category_id,omitempty"`
}

// Transaction type values.
const (
	TxIncome   = "income"
	TxExpense  = "expense"
	TxTransfer = "transfer"
)

// TransactionDoc is a single ledger movement. Transfers carry both a
// source account and a destination account.
type TransactionDoc struct {
	TxType      string          `json:"tx_type"` // income | expense | transfer
	AccountID   string          `json:"account_id"`
	ToAccountID string          `json:"to_account_id,omitempty"` // transfers only
	CategoryID  string          `json:"category_id,omitempty"`
	BucketID    string          `json:"bucket_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	BaseAmount  decimal.Decimal `json:"base_amount,omitempty"` // amount in the wallet base currency
	Currency    string          `json:"currency,omitempty"`
	Date        time.Time       `json:"date"`
	Note        string          `json:"note,omitempty"`
}

// EffectiveAmount returns the base-currency amount when present, else the
// raw amount.
func (t TransactionDoc) EffectiveAmount() decimal.Decimal {
	if !t.BaseAmount.IsZero() {
		return t.BaseAmount
	}
	return t.Amount
}

// BudgetDoc caps spending over a date window, optionally scoped to a
// category and/or currency.
type BudgetDoc struct {
	Name       string          `json:"name"`
	CategoryID string          `json:"category_id,omitempty"`
	Currency   string          `json:"currency,omitempty"`
	Limit      decimal.Decimal `json:"limit"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`

	Spent decimal.Decimal `json:"spent"` // derived
}

// Goal kind values.
const (
	GoalSave    = "save"
	GoalPayDebt = "pay_debt"
)

// GoalDoc tracks progress toward a target, funded by a linked account or
// by paying down a linked debt.
type GoalDoc struct {
	Name            string          `json:"name"`
	GoalType        string          `json:"goal_type,omitempty"` // save | pay_debt
	Target          decimal.Decimal `json:"target"`
	LinkedAccountID string          `json:"linked_account_id,omitempty"`
	LinkedDebtID    string          `json:"linked_debt_id,omitempty"`
	Deadline        *time.Time      `json:"deadline,omitempty"`

	Current   decimal.Decimal `json:"current"`   // derived
	Remaining decimal.Decimal `json:"remaining"` // derived
	Progress  decimal.Decimal `json:"progress"`  // derived, percent
}

// Debt status values.
const (
	DebtActive = "active"
	DebtClosed = "closed"
)

// DebtDoc is an amount owed, repaid through installments.
type DebtDoc struct {
	Name         string          `json:"name"`
	Counterparty string          `json:"counterparty,omitempty"`
	Direction    string          `json:"direction,omitempty"` // i_owe | owed_to_me
	Principal    decimal.Decimal `json:"principal"`
	StartDate    *time.Time      `json:"start_date,omitempty"`

	Remaining decimal.Decimal `json:"remaining"` // derived
	Status    string          `json:"status"`    // derived: active | closed
}

// DebtInstallmentDoc is one scheduled repayment of a debt.
type DebtInstallmentDoc struct {
	DebtID  string          `json:"debt_id"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
	PaidAt  *time.Time      `json:"paid_at,omitempty"`
}

// Fund status values.
const (
	FundActive    = "active"
	FundCompleted = "completed"
)

// FundPayment status values (derived per payment).
const (
	PaymentPaid     = "paid"
	PaymentOverdue  = "overdue"
	PaymentUpcoming = "upcoming"
)

// FundDoc is a rotating savings fund (jam'iya) with scheduled payments.
type FundDoc struct {
	Name         string          `json:"name"`
	Contribution decimal.Decimal `json:"contribution"`
	StartDate    *time.Time      `json:"start_date,omitempty"`

	Status string `json:"status"` // derived: active | completed
}

// FundPaymentDoc is one scheduled payment of a rotating fund.
type FundPaymentDoc struct {
	FundID  string          `json:"fund_id"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
	PaidAt  *time.Time      `json:"paid_at,omitempty"`

	Status string `json:"status"` // derived: paid | overdue | upcoming
}

// BucketDoc groups money inside an account for envelope-style planning.
type BucketDoc struct {
	Name         string          `json:"name"`
	AccountID    string          `json:"account_id,omitempty"`
	TargetAmount decimal.Decimal `json:"target_amount,omitempty"`
	Icon         string          `json:"icon,omitempty"`
}

// BucketAllocationDoc assigns a share of income to a bucket. The
// allocation percentage math lives in the bucket-allocation engine; the
// sync core moves these rows as ordinary documents.
type BucketAllocationDoc struct {
	BucketID string          `json:"bucket_id"`
	Percent  decimal.Decimal `json:"percent,omitempty"`
	Amount   decimal.Decimal `json:"amount,omitempty"`
}

// RecurringRuleDoc is a template for the recurring-occurrence engine,
// which writes occurrences through the ordinary entity contract.
type RecurringRuleDoc struct {
	Name       string          `json:"name"`
	TxType     string          `json:"tx_type,omitempty"`
	AccountID  string          `json:"account_id,omitempty"`
	CategoryID string          `json:"category_id,omitempty"`
	Amount     decimal.Decimal `json:"amount,omitempty"`
	Frequency  string          `json:"frequency,omitempty"` // daily | weekly | monthly | yearly
	NextDate   *time.Time      `json:"next_date,omitempty"`
	IsPaused   bool            `json:"is_paused,omitempty"`
}

// ProfileDoc is the user-scoped profile document. The PIN hash is a
// credential and is stripped from every pull response.
type ProfileDoc struct {
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	PINHash     string `json:"pin_hash,omitempty"` // sensitive
}

// SettingsDoc is the user-scoped app settings document.
type SettingsDoc struct {
	Language      string `json:"language,omitempty"`
	Theme         string `json:"theme,omitempty"`
	BaseCurrency  string `json:"base_currency,omitempty"`
	Notifications bool   `json:"notifications,omitempty"`
}
