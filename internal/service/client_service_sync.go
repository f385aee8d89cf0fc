package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/adapter"
	"github.com/MKhiriev/bookmark-sync/internal/crypto"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/store"
	"github.com/MKhiriev/bookmark-sync/models"
)

const eventBufferSize = 16

type clientSyncService struct {
	localStore *store.ClientStorages
	adapter    adapter.ServerAdapter
	keys       crypto.KeyChainService

	mu      sync.Mutex
	running bool
	// next collects the callers that arrived during the running pass.
	next *syncRound

	subMu       sync.Mutex
	subscribers map[int]chan models.SyncEvent
	nextSubID   int

	now func() time.Time
}

func NewClientSyncService(localStore *store.ClientStorages, serverAdapter adapter.ServerAdapter, keys crypto.KeyChainService) ClientSyncService {
	return &clientSyncService{
		localStore:  localStore,
		adapter:     serverAdapter,
		keys:        keys,
		subscribers: make(map[int]chan models.SyncEvent),
		now:         time.Now,
	}
}

// syncRound is one re-run shared by every caller folded into it.
type syncRound struct {
	done    chan struct{}
	err     error
	waiting int
}

func (r *syncRound) finish(err error) {
	r.err = err
	close(r.done)
}

func (s *clientSyncService) Sync(ctx context.Context) error {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	if s.running {
		if s.next == nil {
			s.next = &syncRound{done: make(chan struct{})}
		}
		round := s.next
		round.waiting++
		s.mu.Unlock()
		log.Debug().Str("func", "clientSyncService.Sync").Msg("sync pass already running, waiting for the re-run")

		select {
		case <-round.done:
			return round.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.running = true
	s.mu.Unlock()

	err := s.runPass(ctx)
	for {
		s.mu.Lock()
		round := s.next
		s.next = nil
		if round == nil {
			s.running = false
		}
		s.mu.Unlock()

		if round == nil {
			return err
		}
		// Nothing can run for a removed account, and every caller has to
		// sign in again.
		if errors.Is(err, ErrAccountRemoved) {
			round.finish(err)
			continue
		}
		log.Debug().Str("func", "clientSyncService.Sync").Int("waiting", round.waiting).Msg("re-running sync pass")
		err = s.runPass(ctx)
		round.finish(err)
	}
}

func (s *clientSyncService) Subscribe() (<-chan models.SyncEvent, func()) {
	ch := make(chan models.SyncEvent, eventBufferSize)

	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.subMu.Unlock()

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(c)
		}
	}
}

func (s *clientSyncService) runPass(ctx context.Context) error {
	log := logger.FromContext(ctx)

	account, err := s.localStore.AccountRepository.GetAccount(ctx)
	if errors.Is(err, store.ErrNoAccount) {
		log.Debug().Str("func", "clientSyncService.runPass").Msg("no sync account, nothing to do")
		return nil
	}
	if err != nil {
		s.emit(models.SyncEvent{Kind: models.SyncFailed, Err: err})
		return err
	}

	initial := account.IsPendingFirstSync()
	s.emit(models.SyncEvent{Kind: models.SyncStarted, Initial: initial})

	result, err := s.send(ctx, account, initial)
	if err != nil {
		log.Err(err).Str("func", "clientSyncService.runPass").
			Int64("user_id", account.UserID).
			Bool("initial", initial).
			Bool("retryable", IsRetryable(err)).
			Msg("sync pass failed")
		s.emit(models.SyncEvent{Kind: models.SyncFailed, Initial: initial, Err: err})
		return err
	}

	if initial {
		account.State = models.AccountActive
		if err = s.localStore.AccountRepository.SaveAccount(ctx, account); err != nil {
			s.emit(models.SyncEvent{Kind: models.SyncFailed, Initial: initial, Err: err})
			return err
		}
	}

	if err := result.Report.Err(); err != nil {
		log.Warn().Err(err).Str("func", "clientSyncService.runPass").Msg("received delta was applied partially")
	}
	s.emit(models.SyncEvent{
		Kind:       models.SyncSucceeded,
		Initial:    initial,
		Sent:       result.Sent,
		Received:   result.Received,
		Violations: len(result.Report.Violations),
	})
	return nil
}

// send captures the local changes and pushes them through a fresh update
// builder.
func (s *clientSyncService) send(ctx context.Context, account models.SyncAccount, initial bool) (SendResult, error) {
	crypter, err := s.keys.NewCrypter(account.SecretKey)
	if err != nil {
		return SendResult{}, fmt.Errorf("%w: %w", ErrEncryption, err)
	}
	s.adapter.SetToken(account.Token)

	capture := NewChangeCapture(s.localStore.TreeRepository, crypter)
	var snap Snapshot
	if initial {
		snap, err = capture.AllObjects(ctx)
	} else {
		snap, err = capture.ChangedObjects(ctx)
	}
	if err != nil {
		return SendResult{}, err
	}

	builder := NewUpdateBuilder(UpdateBuilderDeps{
		UserID:   account.UserID,
		Adapter:  s.adapter,
		Trees:    s.localStore.TreeRepository,
		Queue:    s.localStore.OfflineQueueRepository,
		Metadata: s.localStore.SyncMetadataRepository,
		Accounts: s.localStore.AccountRepository,
		Merger:   NewMergeEngine(crypter),
	}).WithCapturedAt(snap.CapturedAt)
	if initial {
		builder = builder.WithFullFetch()
	}
	for _, rec := range snap.Records {
		if rec.IsDeleted() {
			builder = builder.WithDelete(rec.UUID)
			continue
		}
		builder = builder.WithUpsert(rec)
	}

	return builder.Send(ctx)
}

func (s *clientSyncService) emit(ev models.SyncEvent) {
	ev.At = s.now().UTC()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
