package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
)

func TestKindPriority_CoversEveryKind(t *testing.T) {
	priority := domain.KindPriority()
	seen := make(map[domain.EntityKind]bool, len(priority))
	for _, kind := range priority {
		assert.False(t, seen[kind], "kind %s listed twice", kind)
		seen[kind] = true

		doc, ok := domain.NewDoc(kind)
		assert.True(t, ok, "kind %s missing from the schema registry", kind)
		assert.NotNil(t, doc)
	}

	// Parents before children, so a replaying client resolves references.
	index := make(map[domain.EntityKind]int, len(priority))
	for i, kind := range priority {
		index[kind] = i
	}
	assert.Less(t, index[domain.KindAccount], index[domain.KindTransaction])
	assert.Less(t, index[domain.KindDebt], index[domain.KindDebtInstallment])
	assert.Less(t, index[domain.KindFund], index[domain.KindFundPayment])
	assert.Less(t, index[domain.KindBucket], index[domain.KindBucketAllocation])
}

func TestKnownKind(t *testing.T) {
	assert.True(t, domain.KnownKind(domain.KindTransaction))
	assert.False(t, domain.KnownKind("spaceship"))
}

func TestDecodeDoc_DropsUnknownFields(t *testing.T) {
	raw := json.RawMessage(`{"name":"Cash","opening_balance":"10","evil_extra":"x"}`)
	doc, err := domain.DecodeDoc(domain.KindAccount, raw)
	require.NoError(t, err)

	account, ok := doc.(*domain.AccountDoc)
	require.True(t, ok)
	assert.Equal(t, "Cash", account.Name)

	encoded, err := domain.EncodeDoc(account)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "evil_extra")
}

func TestDecodeDoc_UnknownKind(t *testing.T) {
	_, err := domain.DecodeDoc("spaceship", json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestCarryDerived_Create(t *testing.T) {
	account := &domain.AccountDoc{
		OpeningBalance: decimal.NewFromInt(100),
		Balance:        decimal.NewFromInt(9999), // client-supplied, overwritten
	}
	domain.CarryDerived(domain.KindAccount, account, nil)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)))

	goal := &domain.GoalDoc{Target: decimal.NewFromInt(500), Current: decimal.NewFromInt(123)}
	domain.CarryDerived(domain.KindGoal, goal, nil)
	assert.True(t, goal.Current.IsZero())
	assert.True(t, goal.Remaining.Equal(decimal.NewFromInt(500)))

	debt := &domain.DebtDoc{Principal: decimal.NewFromInt(300)}
	domain.CarryDerived(domain.KindDebt, debt, nil)
	assert.True(t, debt.Remaining.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, domain.DebtActive, debt.Status)
}

func TestCarryDerived_Update(t *testing.T) {
	prev := &domain.AccountDoc{Balance: decimal.NewFromInt(60)}
	next := &domain.AccountDoc{
		OpeningBalance: decimal.NewFromInt(100),
		Balance:        decimal.NewFromInt(9999),
	}
	domain.CarryDerived(domain.KindAccount, next, prev)
	assert.True(t, next.Balance.Equal(decimal.NewFromInt(60)), "the recalc engine owns the balance, not the client")

	prevBudget := &domain.BudgetDoc{Spent: decimal.NewFromInt(75)}
	nextBudget := &domain.BudgetDoc{Spent: decimal.NewFromInt(1)}
	domain.CarryDerived(domain.KindBudget, nextBudget, prevBudget)
	assert.True(t, nextBudget.Spent.Equal(decimal.NewFromInt(75)))
}

func TestDocRefs(t *testing.T) {
	tx := &domain.TransactionDoc{
		TxType:      domain.TxTransfer,
		AccountID:   "acc-1",
		ToAccountID: "acc-2",
		CategoryID:  "cat-1",
	}
	refs := domain.DocRefs(domain.KindTransaction, tx)
	assert.ElementsMatch(t, []domain.EntityRef{
		{Kind: domain.KindAccount, ID: "acc-1"},
		{Kind: domain.KindAccount, ID: "acc-2"},
		{Kind: domain.KindCategory, ID: "cat-1"},
	}, refs)

	inst := &domain.DebtInstallmentDoc{DebtID: "debt-1"}
	assert.Equal(t, []domain.EntityRef{{Kind: domain.KindDebt, ID: "debt-1"}},
		domain.DocRefs(domain.KindDebtInstallment, inst))

	assert.Empty(t, domain.DocRefs(domain.KindAccount, &domain.AccountDoc{}))
}

func TestValidateDoc(t *testing.T) {
	err := domain.ValidateDoc(domain.KindTransaction, &domain.TransactionDoc{
		TxType: "teleport", AccountID: "acc-1",
	})
	assert.Error(t, err, "tx_type outside the closed vocabulary")

	err = domain.ValidateDoc(domain.KindTransaction, &domain.TransactionDoc{
		TxType: domain.TxExpense,
	})
	assert.Error(t, err, "missing account_id")

	err = domain.ValidateDoc(domain.KindTransaction, &domain.TransactionDoc{
		TxType: domain.TxTransfer, AccountID: "acc-1",
	})
	assert.Error(t, err, "transfer without destination")

	err = domain.ValidateDoc(domain.KindGoal, &domain.GoalDoc{GoalType: domain.GoalPayDebt})
	assert.Error(t, err, "pay_debt goal without a linked debt")

	err = domain.ValidateDoc(domain.KindTransaction, &domain.TransactionDoc{
		TxType: domain.TxExpense, AccountID: "acc-1", Amount: decimal.NewFromInt(5),
	})
	assert.NoError(t, err)
}

func TestScrubPayload(t *testing.T) {
	raw, err := json.Marshal(domain.ProfileDoc{DisplayName: "Ala", PINHash: "bcrypt-hash"})
	require.NoError(t, err)

	scrubbed, err := domain.ScrubPayload(domain.KindProfile, raw)
	require.NoError(t, err)
	assert.NotContains(t, string(scrubbed), "pin_hash")
	assert.Contains(t, string(scrubbed), "Ala")

	// Other kinds pass through untouched.
	accRaw := json.RawMessage(`{"name":"Cash"}`)
	same, err := domain.ScrubPayload(domain.KindAccount, accRaw)
	require.NoError(t, err)
	assert.Equal(t, accRaw, same)
}

func TestMinMutationRole(t *testing.T) {
	assert.Equal(t, domain.RoleAdmin, domain.MinMutationRole(domain.KindWallet, domain.OpUpdate))
	assert.Equal(t, domain.RoleAdmin, domain.MinMutationRole(domain.KindWallet, domain.OpDelete))
	assert.Equal(t, domain.RoleMember, domain.MinMutationRole(domain.KindWallet, domain.OpCreate))
	assert.Equal(t, domain.RoleMember, domain.MinMutationRole(domain.KindTransaction, domain.OpUpdate))
}

func TestIsUserScoped(t *testing.T) {
	assert.True(t, domain.IsUserScoped(domain.KindProfile))
	assert.True(t, domain.IsUserScoped(domain.KindSettings))
	assert.False(t, domain.IsUserScoped(domain.KindAccount))
}
