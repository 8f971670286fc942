package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alaalsalam/hisabi-backend/internal/apperrors"
	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	"github.com/alaalsalam/hisabi-backend/internal/dto"
	"github.com/alaalsalam/hisabi-backend/internal/utils/cursor"
)

// Pull returns every change (tombstones included) with server_modified
// after the request cursor, grouped by entity kind in dependency order so
// a replaying client materializes parents before children. Reading is
// allowed for any active member, viewers included.
func (s *syncService) Pull(ctx context.Context, userID string, req dto.SyncPullRequest) (*dto.SyncPullResponse, error) {
	if err := s.gatePull(ctx, userID, req.WalletID); err != nil {
		return nil, err
	}

	token, err := cursor.Decode(req.Cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	since := token.Watermark

	limit := req.Limit
	if limit <= 0 {
		limit = s.limits.DefaultPullLimit
	}
	if limit > s.limits.MaxPullLimit {
		limit = s.limits.MaxPullLimit
	}

	changes := make(map[string][]dto.SyncRecord)
	watermark := since
	remaining := limit
	var resume *cursor.Position

	// Kinds the previous page already drained are skipped outright; the
	// resume kind restarts from its exact (timestamp, id) cut.
	resumeKind := ""
	if token.Resume != nil {
		resumeKind = token.Resume.Kind
	}

	kinds := domain.KindPriority()
	for i, kind := range kinds {
		if resumeKind != "" && string(kind) != resumeKind {
			continue
		}
		sinceTS, afterID := since, ""
		if resumeKind != "" {
			sinceTS, afterID = token.Resume.Time, token.Resume.EntityID
			resumeKind = ""
		}

		scope := domain.ScopeFor(kind, req.WalletID, userID)
		// One extra row tells whether this kind alone exhausted the budget.
		rows, err := s.entityRepo.ListChangedSince(ctx, scope, kind, sinceTS, afterID, remaining+1)
		if err != nil {
			s.LogError(ctx, err, "Failed to list changed entities",
				slog.String("kind", string(kind)),
				slog.String("wallet_id", req.WalletID))
			return nil, err
		}
		kindTruncated := false
		if len(rows) > remaining {
			rows = rows[:remaining]
			kindTruncated = true
		}

		records := make([]dto.SyncRecord, 0, len(rows))
		for _, row := range rows {
			if !row.IsDeleted {
				scrubbed, err := domain.ScrubPayload(kind, row.Payload)
				if err == nil {
					row.Payload = scrubbed
				}
			} else {
				row.Payload = nil
			}
			records = append(records, dto.ToSyncRecord(row))
			if row.ServerModified.After(watermark) {
				watermark = row.ServerModified
			}
		}
		if len(records) > 0 {
			changes[string(kind)] = records
		}
		remaining -= len(rows)

		if len(rows) > 0 && (kindTruncated || (remaining == 0 && i < len(kinds)-1)) {
			last := rows[len(rows)-1]
			resume = &cursor.Position{Kind: string(kind), Time: last.ServerModified, EntityID: last.EntityID}
			break
		}
	}

	now := s.now()

	// A cut page pins the exact row it stopped at and keeps the base
	// watermark, so kinds not yet visited still scan from it. A complete
	// page may jump to now; the cursor never moves backwards past what the
	// client already holds.
	var next cursor.Token
	if resume != nil {
		next = cursor.Token{Watermark: since, Resume: resume}
	} else {
		next = cursor.Token{Watermark: watermark}
		if now.After(next.Watermark) {
			next.Watermark = now
		}
		if next.Watermark.Before(since) {
			next.Watermark = since
		}
	}

	if err := s.devices.TouchDevice(ctx, req.DeviceID, now); err != nil {
		s.LogDebug(ctx, "Failed to record device activity", slog.String("error", err.Error()))
	}

	return &dto.SyncPullResponse{
		Changes:    changes,
		NextCursor: cursor.Encode(next),
		ServerTime: now,
	}, nil
}

// gatePull admits any active member of the wallet, role irrelevant.
func (s *syncService) gatePull(ctx context.Context, userID, walletID string) error {
	if _, err := s.walletRepo.FindWalletByID(ctx, walletID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: wallet %s", apperrors.ErrNotFound, walletID)
		}
		return err
	}
	member, err := s.walletRepo.FindMember(ctx, walletID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: not a wallet member", apperrors.ErrForbidden)
		}
		return err
	}
	if !member.IsActive() {
		return fmt.Errorf("%w: membership removed", apperrors.ErrForbidden)
	}
	return nil
}
