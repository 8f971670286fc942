package domain

import (
	"encoding/json"
	"time"
)

// SyncOperation is the mutation verb carried by one push item.
type SyncOperation string

const (
	OpCreate SyncOperation = "create"
	OpUpdate SyncOperation = "update"
	OpDelete SyncOperation = "delete"
)

// ItemStatus is the per-item outcome of a push.
type ItemStatus string

const (
	ItemAccepted  ItemStatus = "accepted"
	ItemConflict  ItemStatus = "conflict"
	ItemDuplicate ItemStatus = "duplicate"
	ItemError     ItemStatus = "error"
)

// ItemErrorCode classifies per-item push failures.
type ItemErrorCode string

const (
	ErrCodeValidation          ItemErrorCode = "validation"
	ErrCodeNotFound            ItemErrorCode = "not_found"
	ErrCodeBaseVersionRequired ItemErrorCode = "base_version_required"
	ErrCodePayloadTooLarge     ItemErrorCode = "payload_too_large"
	ErrCodeUnknownEntityType   ItemErrorCode = "unknown_entity_type"
	ErrCodeUnresolvedReference ItemErrorCode = "unresolved_reference"
	ErrCodeWalletMismatch      ItemErrorCode = "wallet_mismatch"
	ErrCodePermissionDenied    ItemErrorCode = "permission_denied"
	ErrCodeInternal            ItemErrorCode = "internal"
)

// SyncItem is one client mutation inside a push batch.
type SyncItem struct {
	OpID        string          `json:"op_id"`
	EntityType  EntityKind      `json:"entity_type"`
	EntityID    string          `json:"entity_id"`
	Operation   SyncOperation   `json:"operation"`
	BaseVersion *int64          `json:"base_version,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// ServerRecord is the full server-side snapshot of an entity, returned on
// conflicts so the client can rebase.
type ServerRecord struct {
	EntityID       string          `json:"entity_id"`
	DocVersion     int64           `json:"doc_version"`
	ServerModified time.Time       `json:"server_modified"`
	IsDeleted      bool            `json:"is_deleted"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

// SnapshotOf builds a ServerRecord from a stored entity.
func SnapshotOf(e *SyncedEntity) *ServerRecord {
	return &ServerRecord{
		EntityID:       e.EntityID,
		DocVersion:     e.DocVersion,
		ServerModified: e.ServerModified,
		IsDeleted:      e.IsDeleted,
		DeletedAt:      e.DeletedAt,
		Payload:        e.Payload,
	}
}

// SyncItemError carries the failure detail of an errored item.
type SyncItemError struct {
	Code    ItemErrorCode `json:"code"`
	Message string        `json:"message"`
}

// ItemResult is the outcome of one push item, in input order. It is also
// the value stored verbatim in the idempotency ledger, so a replay
// returns the original result unchanged.
type ItemResult struct {
	OpID           string         `json:"op_id"`
	EntityType     EntityKind     `json:"entity_type"`
	ClientID       string         `json:"client_id"`
	Status         ItemStatus     `json:"status"`
	AlreadyApplied bool           `json:"already_applied,omitempty"`
	DocVersion     *int64         `json:"doc_version,omitempty"`
	ServerModified *time.Time     `json:"server_modified,omitempty"`
	ServerRecord   *ServerRecord  `json:"server_record,omitempty"`
	Error          *SyncItemError `json:"error,omitempty"`
}

// IdempotencyKey identifies one mutation attempt: the same op_id retried
// by the same device against the same wallet maps to the same key.
type IdempotencyKey struct {
	UserID   string
	DeviceID string
	WalletID string
	OpID     string
}

// IdempotencyRecord is the write-once stored outcome for a key.
type IdempotencyRecord struct {
	Key       IdempotencyKey
	Status    ItemStatus
	Result    json.RawMessage // ItemResult as recorded at first processing
	CreatedAt time.Time
}

// Audit denial reasons.
const (
	AuditReasonNotMember        = "not_member"
	AuditReasonInsufficientRole = "insufficient_role"
)

// AuditEntry is one best-effort, append-only record of a mutation outcome.
type AuditEntry struct {
	AuditID    string     `json:"auditID"`
	WalletID   string     `json:"walletID"`
	UserID     string     `json:"userID"`
	DeviceID   string     `json:"deviceID"`
	OpID       string     `json:"opID,omitempty"`
	EntityKind EntityKind `json:"entityKind,omitempty"`
	EntityID   string     `json:"entityID,omitempty"`
	Action     string     `json:"action"` // create | update | delete | denied
	Outcome    string     `json:"outcome"`
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
