package dto

import (
	"time"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
)

// CreateWalletRequest creates a wallet through the REST surface. The
// creator becomes the sole owner.
type CreateWalletRequest struct {
	WalletID string `json:"wallet_id,omitempty"` // optional client-supplied id
	Name     string `json:"name" binding:"required"`
	Currency string `json:"currency,omitempty" binding:"omitempty,len=3"`
}

// AddMemberRequest adds a user to a wallet with a role.
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=viewer member admin"`
}

// ChangeMemberRoleRequest changes an existing member's role.
type ChangeMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=viewer member admin"`
}

// WalletResponse is the API representation of a wallet.
type WalletResponse struct {
	WalletID  string    `json:"wallet_id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency,omitempty"`
	Status    string    `json:"status"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberResponse is the API representation of a wallet membership.
type MemberResponse struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joined_at"`
}

// ToWalletResponse maps a domain wallet to its API form.
func ToWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID:  w.WalletID,
		Name:      w.Name,
		Currency:  w.Currency,
		Status:    string(w.Status),
		OwnerID:   w.OwnerID,
		CreatedAt: w.CreatedAt,
	}
}

// ToMemberResponse maps a domain membership to its API form.
func ToMemberResponse(m domain.WalletMember) MemberResponse {
	return MemberResponse{
		UserID:   m.UserID,
		Role:     string(m.Role),
		Status:   string(m.Status),
		JoinedAt: m.JoinedAt,
	}
}

// ListWalletsResponse wraps the wallets a user belongs to.
type ListWalletsResponse struct {
	Wallets []WalletResponse `json:"wallets"`
}
