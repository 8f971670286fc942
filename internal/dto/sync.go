package dto

import (
	"encoding/json"
	"time"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
)

// SyncPushRequest is a batch of client mutations against one wallet.
type SyncPushRequest struct {
	DeviceID string            `json:"device_id" binding:"required"`
	WalletID string            `json:"wallet_id" binding:"required"`
	Items    []SyncItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SyncItemRequest is one mutation inside a push batch.
type SyncItemRequest struct {
	OpID        string          `json:"op_id" binding:"required"`
	EntityType  string          `json:"entity_type" binding:"required"`
	EntityID    string          `json:"entity_id" binding:"required"`
	Operation   string          `json:"operation" binding:"required,oneof=create update delete"`
	BaseVersion *int64          `json:"base_version,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// ToDomain converts the request item to its domain form.
func (i SyncItemRequest) ToDomain() domain.SyncItem {
	return domain.SyncItem{
		OpID:        i.OpID,
		EntityType:  domain.EntityKind(i.EntityType),
		EntityID:    i.EntityID,
		Operation:   domain.SyncOperation(i.Operation),
		BaseVersion: i.BaseVersion,
		Payload:     i.Payload,
	}
}

// SyncPushResponse carries one outcome per item, in input order. The call
// succeeds transport-wise even when individual items failed.
type SyncPushResponse struct {
	Results    []domain.ItemResult `json:"results"`
	ServerTime time.Time           `json:"server_time"`
}

// SyncPullRequest asks for incremental changes since a cursor.
type SyncPullRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
	WalletID string `json:"wallet_id" binding:"required"`
	Cursor   string `json:"cursor,omitempty"`
	Limit    int    `json:"limit,omitempty" binding:"omitempty,min=1"`
}

// SyncRecord is one returned entity change, tombstones included.
type SyncRecord struct {
	EntityID       string          `json:"entity_id"`
	DocVersion     int64           `json:"doc_version"`
	ServerModified time.Time       `json:"server_modified"`
	IsDeleted      bool            `json:"is_deleted"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

// SyncPullResponse groups changes by entity kind and advances the cursor.
type SyncPullResponse struct {
	Changes    map[string][]SyncRecord `json:"changes"`
	NextCursor string                  `json:"next_cursor"`
	ServerTime time.Time               `json:"server_time"`
}

// ToSyncRecord converts a stored entity into its pull representation.
// Sensitive payload scrubbing happens before this point.
func ToSyncRecord(e domain.SyncedEntity) SyncRecord {
	return SyncRecord{
		EntityID:       e.EntityID,
		DocVersion:     e.DocVersion,
		ServerModified: e.ServerModified,
		IsDeleted:      e.IsDeleted,
		DeletedAt:      e.DeletedAt,
		Payload:        e.Payload,
	}
}
