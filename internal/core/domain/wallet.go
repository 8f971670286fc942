package domain

import "time"

// Wallet represents a shared ledger scope with its own membership list.
type Wallet struct {
	WalletID  string       `json:"walletID"` // Primary Key (client-supplied, e.g. UUID)
	Name      string       `json:"name"`
	Currency  string       `json:"currency"` // Base currency code for this wallet (e.g. "USD")
	Status    WalletStatus `json:"status"`
	OwnerID   string       `json:"ownerID"` // Exactly one owner at creation
	CreatedAt time.Time    `json:"createdAt"`
}

// WalletStatus defines the lifecycle states of a wallet.
type WalletStatus string

const (
	WalletActive   WalletStatus = "active"
	WalletArchived WalletStatus = "archived"
)

// WalletRole defines the possible roles a user can have within a wallet.
type WalletRole string

const (
	RoleViewer WalletRole = "viewer"
	RoleMember WalletRole = "member"
	RoleAdmin  WalletRole = "admin"
	RoleOwner  WalletRole = "owner"
)

// roleRanks orders roles so higher values grant strictly more access.
var roleRanks = map[WalletRole]int{
	RoleViewer: 1,
	RoleMember: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// Rank returns the numeric rank of a role, or 0 for an unknown role.
func (r WalletRole) Rank() int {
	return roleRanks[r]
}

// AtLeast reports whether the role meets or exceeds the required role.
func (r WalletRole) AtLeast(required WalletRole) bool {
	return r.Rank() >= required.Rank() && r.Rank() > 0
}

// MemberStatus defines the lifecycle states of a wallet membership.
type MemberStatus string

const (
	MemberActive  MemberStatus = "active"
	MemberRemoved MemberStatus = "removed"
)

// WalletMember represents the membership of a user in a wallet.
type WalletMember struct {
	WalletID string       `json:"walletID"` // FK -> wallets.wallet_id
	UserID   string       `json:"userID"`   // FK -> users.user_id
	Role     WalletRole   `json:"role"`
	Status   MemberStatus `json:"status"`
	JoinedAt time.Time    `json:"joinedAt"`
}

// IsActive reports whether the membership currently grants access.
func (m WalletMember) IsActive() bool {
	return m.Status == MemberActive
}
