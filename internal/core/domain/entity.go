package domain

import (
	"encoding/json"
	"time"
)

// EntityKind identifies one kind of synced entity. The set of kinds is
// closed: adding a kind means adding a case to the registry in kinds.go.
type EntityKind string

const (
	KindWallet           EntityKind = "wallet"
	KindAccount          EntityKind = "account"
	KindCategory         EntityKind = "category"
	KindTransaction      EntityKind = "transaction"
	KindBudget           EntityKind = "budget"
	KindGoal             EntityKind = "goal"
	KindDebt             EntityKind = "debt"
	KindDebtInstallment  EntityKind = "debt_installment"
	KindFund             EntityKind = "fund"
	KindFundPayment      EntityKind = "fund_payment"
	KindBucket           EntityKind = "bucket"
	KindBucketAllocation EntityKind = "bucket_allocation"
	KindRecurringRule    EntityKind = "recurring_rule"
	KindProfile          EntityKind = "profile"
	KindSettings         EntityKind = "settings"
)

// SyncedEntity is the storage envelope shared by every entity kind.
// The payload holds the kind-specific document; the envelope fields are
// server-authoritative and never accepted from clients.
type SyncedEntity struct {
	WalletID       string          `json:"walletID"` // Empty for user-scoped kinds
	UserID         string          `json:"userID"`   // Owning user (creator, or subject for user-scoped kinds)
	Kind           EntityKind      `json:"kind"`
	EntityID       string          `json:"entityID"`   // Client-supplied primary key
	DocVersion     int64           `json:"docVersion"` // Monotonic, +1 per accepted write
	ServerModified time.Time       `json:"serverModified"`
	IsDeleted      bool            `json:"isDeleted"` // Tombstone; rows are never hard-deleted
	DeletedAt      *time.Time      `json:"deletedAt,omitempty"`
	Payload        json.RawMessage `json:"payload"`
}

// EntityRef is a cross-entity reference carried inside a payload.
type EntityRef struct {
	Kind EntityKind
	ID   string
}

// EntityScope selects which rows a query sees: a wallet for wallet-scoped
// kinds, or a user for user-scoped kinds. Exactly one side is set.
type EntityScope struct {
	WalletID string
	UserID   string
}

// WalletScope returns the scope for a wallet-scoped kind.
func WalletScope(walletID string) EntityScope {
	return EntityScope{WalletID: walletID}
}

// UserScope returns the scope for a user-scoped kind.
func UserScope(userID string) EntityScope {
	return EntityScope{UserID: userID}
}

// ScopeFor picks the right scope for a kind.
func ScopeFor(kind EntityKind, walletID, userID string) EntityScope {
	if IsUserScoped(kind) {
		return UserScope(userID)
	}
	return WalletScope(walletID)
}
