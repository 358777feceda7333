package service_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"sharefile/share-api/db"
	"sharefile/share-api/internal/model"
	"sharefile/share-api/internal/repository"
	"sharefile/share-api/internal/service"
	"sharefile/share-api/internal/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errBoom = errors.New("boom")

// memStore is an in-memory object store that records the calls made to it
type memStore struct {
	mu      sync.Mutex
	objects map[string]storage.ObjectInfo

	puts    int
	removes [][]string

	putErr    error
	removeErr error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]storage.ObjectInfo{}}
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, size int64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.puts++
	if m.putErr != nil {
		return m.putErr
	}

	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}

	m.objects[key] = storage.ObjectInfo{Key: key, Size: size, LastModified: time.Now()}
	return nil
}

func (m *memStore) Remove(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removes = append(m.removes, append([]string(nil), keys...))
	if m.removeErr != nil {
		return m.removeErr
	}

	for _, k := range keys {
		delete(m.objects, k)
	}

	return nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.objects[key]
	return ok, nil
}

func (m *memStore) List(_ context.Context) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]storage.ObjectInfo, 0, len(m.objects))
	for _, o := range m.objects {
		out = append(out, o)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (m *memStore) has(key string) bool {
	ok, _ := m.Exists(context.Background(), key)
	return ok
}

func (m *memStore) add(key string, modified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = storage.ObjectInfo{Key: key, LastModified: modified}
}

// files wraps the real row store so single calls can be counted or failed
type files struct {
	*repository.Files

	deletes   int
	deleteErr error
	insertErr error
	listErr   error
}

func (f *files) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	f.deletes++
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}

	return f.Files.DeleteByIDs(ctx, ids)
}

func (f *files) Insert(ctx context.Context, file *model.File, q service.Quota) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}

	return f.Files.Insert(ctx, file, q)
}

func (f *files) ListExpired(ctx context.Context, now int64) ([]model.File, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.Files.ListExpired(ctx, now)
}

type subs struct {
	*repository.Subscriptions

	deletes   int
	deleteErr error
}

func (s *subs) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	s.deletes++
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}

	return s.Subscriptions.DeleteByIDs(ctx, ids)
}

type env struct {
	db    *gorm.DB
	files *files
	subs  *subs
	store *memStore
}

func newEnv(t *testing.T) *env {
	t.Helper()

	conn, err := db.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &env{
		db:    conn,
		files: &files{Files: repository.NewFiles(conn)},
		subs:  &subs{Subscriptions: repository.NewSubscriptions(conn)},
		store: newMemStore(),
	}
}

// seedFile stores an object and its row directly
func (e *env) seedFile(t *testing.T, id, user string, expiresAt *int64) *model.File {
	t.Helper()

	f := &model.File{
		ID:           id,
		UserID:       user,
		StorageKey:   user + "/1-" + id + "-seed.bin",
		OriginalName: "seed.bin",
		Size:         1,
		CreatedAt:    1,
		ExpiresAt:    expiresAt,
	}

	e.store.add(f.StorageKey, time.Unix(0, 0))

	ok, err := e.files.Files.Insert(context.Background(), f, service.Quota{Max: 1 << 20})
	require.NoError(t, err)
	require.True(t, ok)

	return f
}

func (e *env) seedSubscription(t *testing.T, id, user, planType string, createdAt, expiresAt int64) *model.Subscription {
	t.Helper()

	s := &model.Subscription{
		ID:        id,
		UserID:    user,
		PlanType:  planType,
		Amount:    100,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}

	require.NoError(t, e.subs.Create(context.Background(), s))
	return s
}

func (e *env) fileCount(t *testing.T) int64 {
	t.Helper()

	var n int64
	require.NoError(t, e.db.Model(&model.File{}).Count(&n).Error)
	return n
}

func (e *env) subscriptionCount(t *testing.T) int64 {
	t.Helper()

	var n int64
	require.NoError(t, e.db.Model(&model.Subscription{}).Count(&n).Error)
	return n
}

func ptr(v int64) *int64 { return &v }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
