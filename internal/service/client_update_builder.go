package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/adapter"
	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/store"
	"github.com/MKhiriev/bookmark-sync/models"
)

// UpdateBuilderDeps are the collaborators of one send attempt.
type UpdateBuilderDeps struct {
	UserID   int64
	Adapter  adapter.ServerAdapter
	Trees    store.LocalTreeRepository
	Queue    store.OfflineQueueRepository
	Metadata store.SyncMetadataRepository
	Accounts store.AccountRepository
	Merger   *MergeEngine
}

// SendResult describes a successful send.
type SendResult struct {
	Sent     int
	Received int
	Cursor   string
	Report   MergeReport
}

// UpdateBuilder collects the outbound changes of one sync pass. It is a value:
// every With method returns a new builder and never writes to the changes of
// the receiver, so a builder can be extended or retried safely.
type UpdateBuilder struct {
	changes    []models.Syncable
	full       bool
	capturedAt time.Time
	deps       *UpdateBuilderDeps
	now        func() time.Time
}

func NewUpdateBuilder(deps UpdateBuilderDeps) UpdateBuilder {
	return UpdateBuilder{
		deps: &deps,
		now:  time.Now,
	}
}

// WithUpsert returns a builder that also sends rec.
func (b UpdateBuilder) WithUpsert(rec models.Syncable) UpdateBuilder {
	b.changes = append(slices.Clip(b.changes), rec)
	return b
}

// WithDelete returns a builder that also sends a tombstone for uuid.
func (b UpdateBuilder) WithDelete(uuid string) UpdateBuilder {
	b.changes = append(slices.Clip(b.changes), models.NewTombstone(uuid))
	return b
}

// WithFullFetch returns a builder that requests every record of the account
// instead of the delta since the stored cursor.
func (b UpdateBuilder) WithFullFetch() UpdateBuilder {
	b.full = true
	return b
}

// WithCapturedAt sets the capture time of the changes. Entities edited after
// it keep their modified marker when the send is confirmed.
func (b UpdateBuilder) WithCapturedAt(at time.Time) UpdateBuilder {
	b.capturedAt = at
	return b
}

// Len returns the number of changes collected so far.
func (b UpdateBuilder) Len() int {
	return len(b.changes)
}

// Send submits the collected changes together with any queued offline batch
// and merges the returned delta.
//
// A failed send keeps the merged batch in the offline queue and returns
// [ErrTransport]. A 403 drops every piece of sync state of the account and
// returns [ErrAccountRemoved]. Store failures are returned unchanged.
func (b UpdateBuilder) Send(ctx context.Context) (SendResult, error) {
	log := logger.FromContext(ctx)
	d := b.deps

	queued, err := d.Queue.LoadBatch(ctx, d.UserID)
	if err != nil && !errors.Is(err, store.ErrNoOfflineBatch) {
		log.Err(err).Str("func", "UpdateBuilder.Send").Msg("failed to load offline batch")
		return SendResult{}, err
	}

	cursor := ""
	if !b.full {
		if cursor, err = d.Metadata.GetCursor(ctx); err != nil {
			log.Err(err).Str("func", "UpdateBuilder.Send").Msg("failed to read cursor")
			return SendResult{}, err
		}
	}

	updates, err := b.mergeQueued(ctx, queued.Changes)
	if err != nil {
		return SendResult{}, err
	}

	resp, err := d.Adapter.SyncBookmarks(ctx, models.BookmarksRequest{
		Updates:       updates,
		ModifiedSince: cursor,
	})
	if err != nil {
		if errors.Is(err, adapter.ErrForbidden) {
			log.Warn().Err(err).Str("func", "UpdateBuilder.Send").Int64("user_id", d.UserID).Msg("account was revoked on the server")
			return SendResult{}, b.dropAccount(ctx)
		}

		log.Err(err).Str("func", "UpdateBuilder.Send").Int("updates", len(updates)).Msg("send failed, batch kept offline")
		sendErr := fmt.Errorf("%w: %w", ErrTransport, err)
		if errors.Is(mapAdapterError(err), store.ErrInvalidCursor) {
			// the next pass fetches everything again
			log.Warn().Str("func", "UpdateBuilder.Send").Str("cursor", cursor).Msg("server rejected cursor, resetting it")
			if resetErr := d.Metadata.SetCursor(ctx, ""); resetErr != nil {
				return SendResult{}, errors.Join(sendErr, resetErr)
			}
			cursor = ""
		}
		saveErr := d.Queue.SaveBatch(ctx, models.OfflineBatch{
			UserID:        d.UserID,
			Changes:       updates,
			ModifiedSince: cursor,
			CreatedAt:     b.now().UTC(),
		})
		if saveErr != nil {
			return SendResult{}, errors.Join(sendErr, saveErr)
		}
		return SendResult{}, sendErr
	}

	result := SendResult{Sent: len(updates), Received: len(resp.Entries), Cursor: resp.LastModified}
	err = d.Trees.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		if len(resp.Entries) > 0 {
			result.Report = d.Merger.Merge(ctx, tree, resp.Entries)
		}
		b.confirmSent(tree, updates)
		return nil
	})
	if err != nil {
		return SendResult{}, err
	}

	if err = d.Queue.ClearBatch(ctx, d.UserID); err != nil {
		return SendResult{}, err
	}
	if err = d.Metadata.SetCursor(ctx, resp.LastModified); err != nil {
		return SendResult{}, err
	}

	log.Info().Str("func", "UpdateBuilder.Send").
		Int("sent", result.Sent).
		Int("received", result.Received).
		Str("cursor", result.Cursor).
		Msg("changes sent")
	return result, nil
}

// mergeQueued prepends the queued changes that no fresh change supersedes.
// Queued upserts of entities that are gone from the tree are sent as
// tombstones so a hard local delete still reaches the server.
func (b UpdateBuilder) mergeQueued(ctx context.Context, queued []models.Syncable) ([]models.Syncable, error) {
	if len(queued) == 0 {
		return slices.Clone(b.changes), nil
	}

	tree, err := b.deps.Trees.LoadTree(ctx)
	if err != nil {
		return nil, err
	}

	fresh := make(map[string]struct{}, len(b.changes))
	for _, rec := range b.changes {
		fresh[rec.UUID] = struct{}{}
	}

	out := make([]models.Syncable, 0, len(queued)+len(b.changes))
	seen := make(map[string]struct{}, len(queued))
	for _, rec := range queued {
		if _, ok := fresh[rec.UUID]; ok {
			continue
		}
		if _, dup := seen[rec.UUID]; dup {
			continue
		}
		seen[rec.UUID] = struct{}{}
		if !rec.IsDeleted() && !tree.Has(rec.UUID) {
			rec = models.NewTombstone(rec.UUID)
		}
		out = append(out, rec)
	}
	return append(out, b.changes...), nil
}

// confirmSent clears the local markers of the sent entities. Confirmed
// tombstones are hard-deleted.
func (b UpdateBuilder) confirmSent(tree *bookmarks.Tree, sent []models.Syncable) {
	for _, rec := range sent {
		e, ok := tree.Get(rec.UUID)
		if !ok {
			// Hard-deleted while the upsert was in flight.
			if !rec.IsDeleted() {
				tree.AddTombstone(rec.UUID, b.now())
			}
			continue
		}
		if e.ModifiedAfter(b.capturedAt) {
			continue
		}
		if e.PendingDeletion {
			if e.IsRoot() {
				continue
			}
			_ = tree.Remove(rec.UUID)
			continue
		}
		if rec.IsDeleted() {
			continue
		}
		e.ModifiedAt = nil
		e.Synced = true
		tree.MarkDirty(rec.UUID)
	}
}

// dropAccount removes the sync state of a revoked account.
func (b UpdateBuilder) dropAccount(ctx context.Context) error {
	d := b.deps
	d.Adapter.SetToken("")
	errs := []error{ErrAccountRemoved}
	if err := d.Queue.ClearBatch(ctx, d.UserID); err != nil {
		errs = append(errs, err)
	}
	if err := d.Metadata.SetCursor(ctx, ""); err != nil {
		errs = append(errs, err)
	}
	if err := d.Accounts.ClearAccount(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
