package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/adapter"
	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/internal/mock"
	"github.com/MKhiriev/bookmark-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type syncFixture struct {
	svc     *clientSyncService
	adapter *mock.MockServerAdapter
	keys    *mock.MockKeyChainService
	stores  memStores
}

func newSyncFixture(t *testing.T, tree *bookmarks.Tree, account *models.SyncAccount) syncFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	serverAdapter := mock.NewMockServerAdapter(ctrl)
	keys := mock.NewMockKeyChainService(ctrl)
	localStore, stores := newMemStores(tree)
	stores.accounts.account = account

	keys.EXPECT().NewCrypter(gomock.Any()).Return(fakeCrypter{}, nil).AnyTimes()
	serverAdapter.EXPECT().SetToken(gomock.Any()).AnyTimes()

	return syncFixture{
		svc:     NewClientSyncService(localStore, serverAdapter, keys).(*clientSyncService),
		adapter: serverAdapter,
		keys:    keys,
		stores:  stores,
	}
}

func activeAccount() *models.SyncAccount {
	return &models.SyncAccount{UserID: testUserID, Login: "alice", SecretKey: []byte("k"), Token: "tok", State: models.AccountActive}
}

func drain(ch <-chan models.SyncEvent) []models.SyncEvent {
	var out []models.SyncEvent
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// ─────────────────────────────────────────────
// Sync
// ─────────────────────────────────────────────

func TestClientSyncService_Sync_NoAccount(t *testing.T) {
	f := newSyncFixture(t, nil, nil)
	events, stop := f.svc.Subscribe()
	defer stop()

	require.NoError(t, f.svc.Sync(context.Background()))
	assert.Empty(t, drain(events))
}

func TestClientSyncService_Sync_InitialPass(t *testing.T) {
	tree := bookmarks.NewTree()
	addBookmark(tree, models.RootFolderID, "b1", "Go", "https://go.dev")
	account := activeAccount()
	account.State = models.AccountPendingFirstSync
	f := newSyncFixture(t, tree, account)
	f.stores.meta.cursor = "stale"

	f.adapter.EXPECT().
		SyncBookmarks(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.BookmarksRequest) (models.BookmarksResponse, error) {
			assert.Empty(t, req.ModifiedSince, "a first sync fetches everything")
			assert.ElementsMatch(t, []string{"b1", models.RootFolderID, models.FavoritesFolderID}, uuids(req.Updates))
			return models.BookmarksResponse{LastModified: "1"}, nil
		})

	events, stop := f.svc.Subscribe()
	defer stop()

	require.NoError(t, f.svc.Sync(context.Background()))

	assert.Equal(t, models.AccountActive, f.stores.accounts.account.State)
	assert.Equal(t, "1", f.stores.meta.cursor)

	got := drain(events)
	require.Len(t, got, 2)
	assert.Equal(t, models.SyncStarted, got[0].Kind)
	assert.True(t, got[0].Initial)
	assert.Equal(t, models.SyncSucceeded, got[1].Kind)
	assert.True(t, got[1].Initial)
	assert.Equal(t, 3, got[1].Sent)
}

func TestClientSyncService_Sync_SendsOnlyChanges(t *testing.T) {
	tree := bookmarks.NewTree()
	synced(addBookmark(tree, models.RootFolderID, "b1", "Go", "https://go.dev")).MarkModified(editedAt)
	synced(addBookmark(tree, models.RootFolderID, "b2", "Rust", "https://rust-lang.org"))
	f := newSyncFixture(t, tree, activeAccount())
	f.stores.meta.cursor = "4"

	f.adapter.EXPECT().
		SyncBookmarks(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.BookmarksRequest) (models.BookmarksResponse, error) {
			assert.Equal(t, "4", req.ModifiedSince)
			assert.Equal(t, []string{"b1"}, uuids(req.Updates))
			return models.BookmarksResponse{LastModified: "5"}, nil
		})

	require.NoError(t, f.svc.Sync(context.Background()))

	b1, _ := f.stores.trees.current().Get("b1")
	assert.False(t, b1.IsModified())
}

func TestClientSyncService_Sync_FailureKeepsPendingState(t *testing.T) {
	account := activeAccount()
	account.State = models.AccountPendingFirstSync
	f := newSyncFixture(t, nil, account)

	f.adapter.EXPECT().
		SyncBookmarks(gomock.Any(), gomock.Any()).
		Return(models.BookmarksResponse{}, fmt.Errorf("%w: %s", adapter.ErrUnavailable, "down"))

	events, stop := f.svc.Subscribe()
	defer stop()

	err := f.svc.Sync(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Equal(t, models.AccountPendingFirstSync, f.stores.accounts.account.State)

	got := drain(events)
	require.Len(t, got, 2)
	assert.Equal(t, models.SyncFailed, got[1].Kind)
	assert.True(t, errors.Is(got[1].Err, ErrTransport))
}

func TestClientSyncService_Sync_RevocationIsTerminal(t *testing.T) {
	f := newSyncFixture(t, nil, activeAccount())

	f.adapter.EXPECT().
		SyncBookmarks(gomock.Any(), gomock.Any()).
		Return(models.BookmarksResponse{}, fmt.Errorf("%w: %s", adapter.ErrForbidden, "account was revoked")).
		Times(1)

	err := f.svc.Sync(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAccountRemoved))
	assert.Nil(t, f.stores.accounts.account)

	// without an account later passes do nothing
	require.NoError(t, f.svc.Sync(context.Background()))
}

func TestClientSyncService_Sync_CrypterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	serverAdapter := mock.NewMockServerAdapter(ctrl)
	keys := mock.NewMockKeyChainService(ctrl)
	localStore, stores := newMemStores(nil)
	stores.accounts.account = activeAccount()

	keys.EXPECT().NewCrypter([]byte("k")).Return(nil, errors.New("bad key"))

	err := NewClientSyncService(localStore, serverAdapter, keys).Sync(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEncryption))
}

// blockFirstCall makes the first SyncBookmarks call wait for release. Call n
// fails with results[n-1] or succeeds when it is nil.
func blockFirstCall(f syncFixture, calls *atomic.Int64, started, release chan struct{}, results ...error) {
	f.adapter.EXPECT().
		SyncBookmarks(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.BookmarksRequest) (models.BookmarksResponse, error) {
			n := calls.Add(1)
			if n == 1 {
				close(started)
				<-release
			}
			if err := results[n-1]; err != nil {
				return models.BookmarksResponse{}, err
			}
			return models.BookmarksResponse{LastModified: "1"}, nil
		}).
		Times(len(results))
}

// syncInBackground starts n Sync calls and returns their errors once all of
// them returned.
func syncInBackground(svc *clientSyncService, n int) func() []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = svc.Sync(context.Background())
		}()
	}
	return func() []error {
		wg.Wait()
		return errs
	}
}

func waitStarted(t *testing.T, started <-chan struct{}) {
	t.Helper()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first pass did not start")
	}
}

// waitFolded waits until n calls joined the re-run of the running pass.
func waitFolded(t *testing.T, svc *clientSyncService, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return svc.next != nil && svc.next.waiting == n
	}, time.Second, 5*time.Millisecond)
}

func TestClientSyncService_Sync_CoalescesConcurrentCalls(t *testing.T) {
	f := newSyncFixture(t, nil, activeAccount())

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int64
	blockFirstCall(f, &calls, started, release, nil, nil)

	first := syncInBackground(f.svc, 1)
	waitStarted(t, started)

	// both calls arrive while the first pass runs and fold into one re-run
	folded := syncInBackground(f.svc, 2)
	waitFolded(t, f.svc, 2)
	close(release)

	require.NoError(t, first()[0])
	for _, err := range folded() {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2), calls.Load())
}

func TestClientSyncService_Sync_FoldedCallsGetReRunError(t *testing.T) {
	f := newSyncFixture(t, nil, activeAccount())

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int64
	blockFirstCall(f, &calls, started, release, nil, fmt.Errorf("%w: connection refused", adapter.ErrUnavailable))

	first := syncInBackground(f.svc, 1)
	waitStarted(t, started)
	folded := syncInBackground(f.svc, 1)
	waitFolded(t, f.svc, 1)
	close(release)

	foldedErr := folded()[0]
	require.Error(t, foldedErr)
	assert.True(t, IsRetryable(foldedErr))
	assert.True(t, IsRetryable(first()[0]))
}

func TestClientSyncService_Sync_RevocationReachesEveryCaller(t *testing.T) {
	f := newSyncFixture(t, nil, activeAccount())

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int64
	blockFirstCall(f, &calls, started, release, fmt.Errorf("%w: %s", adapter.ErrForbidden, "account was revoked"))

	first := syncInBackground(f.svc, 1)
	waitStarted(t, started)
	folded := syncInBackground(f.svc, 2)
	waitFolded(t, f.svc, 2)
	close(release)

	assert.ErrorIs(t, first()[0], ErrAccountRemoved)
	for _, err := range folded() {
		assert.ErrorIs(t, err, ErrAccountRemoved)
	}
	assert.Equal(t, int64(1), calls.Load())
	assert.Nil(t, f.stores.accounts.account)

	f.svc.mu.Lock()
	defer f.svc.mu.Unlock()
	assert.False(t, f.svc.running)
	assert.Nil(t, f.svc.next)
}

func TestClientSyncService_Sync_FoldedCallHonorsContext(t *testing.T) {
	f := newSyncFixture(t, nil, activeAccount())

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int64
	blockFirstCall(f, &calls, started, release, nil, nil)

	first := syncInBackground(f.svc, 1)
	waitStarted(t, started)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.svc.Sync(ctx), context.Canceled)

	close(release)
	require.NoError(t, first()[0])
	assert.Equal(t, int64(2), calls.Load())
}

// ─────────────────────────────────────────────
// Subscribe
// ─────────────────────────────────────────────

func TestClientSyncService_Subscribe_CancelClosesChannel(t *testing.T) {
	f := newSyncFixture(t, nil, nil)

	events, stop := f.svc.Subscribe()
	stop()
	stop()

	_, open := <-events
	assert.False(t, open)
}

func TestClientSyncService_Subscribe_SlowSubscriberDoesNotBlock(t *testing.T) {
	f := newSyncFixture(t, nil, nil)
	events, stop := f.svc.Subscribe()
	defer stop()

	for i := 0; i < eventBufferSize*2; i++ {
		f.svc.emit(models.SyncEvent{Kind: models.SyncStarted})
	}

	assert.Len(t, drain(events), eventBufferSize)
}
