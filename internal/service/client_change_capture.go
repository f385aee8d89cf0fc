package service

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/internal/crypto"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/store"
	"github.com/MKhiriev/bookmark-sync/models"
)

// Snapshot is one consistent read of the records a sync pass sends.
type Snapshot struct {
	// Records are the encoded entities ordered by uuid.
	Records []models.Syncable

	// Skipped lists the uuids whose encoding failed. They keep their
	// modified marker and are tried again on the next pass.
	Skipped []string

	// CapturedAt is taken before the tree is read. Sent entities edited
	// after it keep their modified marker on confirmation.
	CapturedAt time.Time

	// Full is set for snapshots of every entity.
	Full bool
}

type changeCapture struct {
	trees   store.LocalTreeRepository
	crypter crypto.Crypter
	now     func() time.Time
}

func NewChangeCapture(trees store.LocalTreeRepository, crypter crypto.Crypter) DataProvider {
	return &changeCapture{
		trees:   trees,
		crypter: crypter,
		now:     time.Now,
	}
}

func (c *changeCapture) AllObjects(ctx context.Context) (Snapshot, error) {
	return c.capture(ctx, true, func(*bookmarks.Entity) bool { return true })
}

func (c *changeCapture) ChangedObjects(ctx context.Context) (Snapshot, error) {
	return c.capture(ctx, false, (*bookmarks.Entity).IsModified)
}

func (c *changeCapture) capture(ctx context.Context, full bool, include func(*bookmarks.Entity) bool) (Snapshot, error) {
	log := logger.FromContext(ctx)

	snap := Snapshot{CapturedAt: c.now().UTC(), Full: full}

	tree, err := c.trees.LoadTree(ctx)
	if err != nil {
		log.Err(err).Str("func", "changeCapture.capture").Msg("failed to read bookmark tree")
		return Snapshot{}, err
	}

	for _, e := range tree.Entities() {
		if !include(e) {
			continue
		}
		// An orphan waits until it is deleted or moved into a folder.
		if !e.IsRoot() && !e.PendingDeletion && e.Parent == "" {
			log.Warn().Str("func", "changeCapture.capture").Str("uuid", e.UUID).Msg("orphan held back")
			snap.Skipped = append(snap.Skipped, e.UUID)
			continue
		}

		rec, err := toSyncable(e, tree, c.crypter)
		if err != nil {
			if !errors.Is(err, ErrEncryption) {
				return Snapshot{}, err
			}
			log.Warn().Err(err).Str("func", "changeCapture.capture").Str("uuid", e.UUID).Msg("entity skipped")
			snap.Skipped = append(snap.Skipped, e.UUID)
			continue
		}
		snap.Records = append(snap.Records, rec)
	}

	log.Debug().Str("func", "changeCapture.capture").
		Bool("full", full).
		Int("records", len(snap.Records)).
		Int("skipped", len(snap.Skipped)).
		Msg("changes captured")
	return snap, nil
}
