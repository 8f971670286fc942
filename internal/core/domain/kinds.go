package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/alaalsalam/hisabi-backend/internal/apperrors"
)

// kindPriority is the fixed order in which kinds are returned by pull and
// recalculated by category. Parents come before the rows that reference
// them so a fresh device can apply a pull top-down.
var kindPriority = []EntityKind{
	KindWallet,
	KindAccount,
	KindCategory,
	KindBucket,
	KindDebt,
	KindFund,
	KindTransaction,
	KindBudget,
	KindGoal,
	KindDebtInstallment,
	KindFundPayment,
	KindBucketAllocation,
	KindRecurringRule,
	KindProfile,
	KindSettings,
}

// KindPriority returns the fixed kind ordering. Callers must not mutate
// the returned slice.
func KindPriority() []EntityKind {
	return kindPriority
}

// userScopedKinds are synced per user instead of per wallet.
var userScopedKinds = map[EntityKind]bool{
	KindProfile:  true,
	KindSettings: true,
}

// IsUserScoped reports whether a kind syncs against the user rather than
// a wallet.
func IsUserScoped(kind EntityKind) bool {
	return userScopedKinds[kind]
}

// KnownKind reports whether the kind is part of the closed registry.
func KnownKind(kind EntityKind) bool {
	for _, k := range kindPriority {
		if k == kind {
			return true
		}
	}
	return false
}

// NewDoc returns a zero-value typed document for the kind. The switch is
// the closed schema registry: unknown kinds are rejected, and adding a
// kind means adding a case here and in the sibling switches below.
func NewDoc(kind EntityKind) (any, bool) {
	switch kind {
	case KindWallet:
		return &WalletDoc{}, true
	case KindAccount:
		return &AccountDoc{}, true
	case KindCategory:
		return &CategoryDoc{}, true
	case KindTransaction:
		return &TransactionDoc{}, true
	case KindBudget:
		return &BudgetDoc{}, true
	case KindGoal:
		return &GoalDoc{}, true
	case KindDebt:
		return &DebtDoc{}, true
	case KindDebtInstallment:
		return &DebtInstallmentDoc{}, true
	case KindFund:
		return &FundDoc{}, true
	case KindFundPayment:
		return &FundPaymentDoc{}, true
	case KindBucket:
		return &BucketDoc{}, true
	case KindBucketAllocation:
		return &BucketAllocationDoc{}, true
	case KindRecurringRule:
		return &RecurringRuleDoc{}, true
	case KindProfile:
		return &ProfileDoc{}, true
	case KindSettings:
		return &SettingsDoc{}, true
	default:
		return nil, false
	}
}

// DecodeDoc parses a raw payload into the typed document for the kind.
// Fields outside the schema are dropped; that is the sanitization step
// for client payloads.
func DecodeDoc(kind EntityKind, raw json.RawMessage) (any, error) {
	doc, ok := NewDoc(kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown entity kind %q", apperrors.ErrValidation, kind)
	}
	if len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("%w: malformed %s payload: %v", apperrors.ErrValidation, kind, err)
	}
	return doc, nil
}

// EncodeDoc serializes a typed document back to a raw payload.
func EncodeDoc(doc any) (json.RawMessage, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return raw, nil
}

// CarryDerived overwrites the derived (recalc-owned) fields of doc with
// the values from prev, so clients can never set them directly. prev is
// nil on create, which leaves the derived fields at their zero values
// until the recalc engine runs.
func CarryDerived(kind EntityKind, doc, prev any) {
	switch d := doc.(type) {
	case *AccountDoc:
		if p, ok := prev.(*AccountDoc); ok {
			d.Balance = p.Balance
		} else {
			d.Balance = d.OpeningBalance
		}
	case *BudgetDoc:
		if p, ok := prev.(*BudgetDoc); ok {
			d.Spent = p.Spent
		} else {
			d.Spent = decimal.Zero
		}
	case *GoalDoc:
		if p, ok := prev.(*GoalDoc); ok {
			d.Current, d.Remaining, d.Progress = p.Current, p.Remaining, p.Progress
		} else {
			d.Current = decimal.Zero
			d.Remaining = d.Target
			d.Progress = decimal.Zero
		}
	case *DebtDoc:
		if p, ok := prev.(*DebtDoc); ok {
			d.Remaining, d.Status = p.Remaining, p.Status
		} else {
			d.Remaining = d.Principal
			d.Status = DebtActive
		}
	case *FundDoc:
		if p, ok := prev.(*FundDoc); ok {
			d.Status = p.Status
		} else {
			d.Status = FundActive
		}
	case *FundPaymentDoc:
		if p, ok := prev.(*FundPaymentDoc); ok {
			d.Status = p.Status
		} else {
			d.Status = PaymentUpcoming
		}
	}
}

// DocRefs lists the cross-entity references a document carries. The push
// handler resolves each one within the request's wallet before accepting
// the write.
func DocRefs(kind EntityKind, doc any) []EntityRef {
	var refs []EntityRef
	add := func(k EntityKind, id string) {
		if id != "" {
			refs = append(refs, EntityRef{Kind: k, ID: id})
		}
	}
	switch d := doc.(type) {
	case *TransactionDoc:
		add(KindAccount, d.AccountID)
		add(KindAccount, d.ToAccountID)
		add(KindCategory, d.CategoryID)
		add(KindBucket, d.BucketID)
	case *BudgetDoc:
		add(KindCategory, d.CategoryID)
	case *GoalDoc:
		add(KindAccount, d.LinkedAccountID)
		add(KindDebt, d.LinkedDebtID)
	case *DebtInstallmentDoc:
		add(KindDebt, d.DebtID)
	case *FundPaymentDoc:
		add(KindFund, d.FundID)
	case *BucketDoc:
		add(KindAccount, d.AccountID)
	case *BucketAllocationDoc:
		add(KindBucket, d.BucketID)
	case *RecurringRuleDoc:
		add(KindAccount, d.AccountID)
		add(KindCategory, d.CategoryID)
	case *CategoryDoc:
		add(KindCategory, d.ParentCategoryID)
	}
	return refs
}

// ScrubPayload removes sensitive fields (credential hashes) from a raw
// payload before it leaves the server. Kinds without sensitive fields are
// returned unchanged.
func ScrubPayload(kind EntityKind, raw json.RawMessage) (json.RawMessage, error) {
	if kind != KindProfile {
		return raw, nil
	}
	doc, err := DecodeDoc(kind, raw)
	if err != nil {
		return nil, err
	}
	if p, ok := doc.(*ProfileDoc); ok {
		p.PINHash = ""
	}
	return EncodeDoc(doc)
}

// MinMutationRole returns the membership role required to apply the given
// operation on the kind. Wallet metadata changes are admin-only; every
// other mutation needs at least member.
func MinMutationRole(kind EntityKind, op SyncOperation) WalletRole {
	if kind == KindWallet && op != OpCreate {
		return RoleAdmin
	}
	return RoleMember
}

// ValidateDoc applies the structural checks the sync core owns: type tags
// from the closed vocabularies and the references a row cannot exist
// without. Full per-entity CRUD validation lives with the entity owners.
func ValidateDoc(kind EntityKind, doc any) error {
	switch d := doc.(type) {
	case *TransactionDoc:
		switch d.TxType {
		case TxIncome, TxExpense, TxTransfer:
		default:
			return fmt.Errorf("%w: tx_type must be income, expense or transfer", apperrors.ErrValidation)
		}
		if d.AccountID == "" {
			return fmt.Errorf("%w: transaction requires account_id", apperrors.ErrValidation)
		}
		if d.TxType == TxTransfer && d.ToAccountID == "" {
			return fmt.Errorf("%w: transfer requires to_account_id", apperrors.ErrValidation)
		}
	case *DebtInstallmentDoc:
		if d.DebtID == "" {
			return fmt.Errorf("%w: debt installment requires debt_id", apperrors.ErrValidation)
		}
	case *FundPaymentDoc:
		if d.FundID == "" {
			return fmt.Errorf("%w: fund payment requires fund_id", apperrors.ErrValidation)
		}
	case *BucketAllocationDoc:
		if d.BucketID == "" {
			return fmt.Errorf("%w: bucket allocation requires bucket_id", apperrors.ErrValidation)
		}
	case *GoalDoc:
		if d.GoalType == GoalPayDebt && d.LinkedDebtID == "" {
			return fmt.Errorf("%w: pay_debt goal requires linked_debt_id", apperrors.ErrValidation)
		}
	}
	return nil
}
