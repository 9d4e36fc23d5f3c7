package mockapi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"job-portal-workers/internal/common/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, delay time.Duration) *Store {
	t.Helper()
	client, err := database.OpenSQLite(t.TempDir(), "mockapi")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	store, err := NewStore(context.Background(), client.DB, delay)
	require.NoError(t, err)
	return store
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 0)
	clock := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	created, err := store.Create(ctx, "jobs", map[string]interface{}{
		"title":  "Backend Engineer",
		"status": "active",
		"remote": true,
	})
	require.NoError(t, err)
	id := created["id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, "2025-04-01T08:00:00.000000000Z", created["createdAt"])

	got, err := store.Get(ctx, "jobs", id)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got["title"])
	assert.Equal(t, true, got["remote"])

	clock = clock.Add(time.Hour)
	updated, err := store.Update(ctx, "jobs", id, map[string]interface{}{
		"status":    "closed",
		"remote":    nil,
		"createdAt": "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "closed", updated["status"])
	assert.NotContains(t, updated, "remote")
	assert.Equal(t, "2025-04-01T08:00:00.000000000Z", updated["createdAt"])
	assert.Equal(t, "2025-04-01T09:00:00.000000000Z", updated["updatedAt"])

	got, err = store.Get(ctx, "jobs", id)
	require.NoError(t, err)
	assert.Equal(t, "closed", got["status"])
	assert.Equal(t, "2025-04-01T09:00:00.000000000Z", got["updatedAt"])

	require.NoError(t, store.Delete(ctx, "jobs", id))
	_, err = store.Get(ctx, "jobs", id)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(store.Delete(ctx, "jobs", id), ErrNotFound))
}

func TestStore_CreateKeepsGivenID(t *testing.T) {
	store := newTestStore(t, 0)
	rec, err := store.Create(context.Background(), "profiles", map[string]interface{}{"id": "p-1", "role": "candidate"})
	require.NoError(t, err)
	assert.Equal(t, "p-1", rec["id"])

	_, err = store.Create(context.Background(), "profiles", map[string]interface{}{"id": "p-1"})
	assert.True(t, errors.Is(err, ErrConflict), "primary key is (collection, id)")

	kept, err := store.Get(context.Background(), "profiles", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "candidate", kept["role"])

	_, err = store.Create(context.Background(), "jobs", map[string]interface{}{"id": "p-1"})
	assert.NoError(t, err)
}

func TestStore_ListFilter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 0)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, status := range []string{"active", "closed", "active"} {
		store.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := store.Create(ctx, "jobs", map[string]interface{}{
			"id":         string(rune('a' + i)),
			"status":     status,
			"experience": i * 2,
		})
		require.NoError(t, err)
	}

	all, err := store.List(ctx, "jobs", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0]["id"])

	active, err := store.List(ctx, "jobs", map[string]string{"status": "active"})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	byNumber, err := store.List(ctx, "jobs", map[string]string{"experience": "4"})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, "c", byNumber[0]["id"])

	_, err = store.Create(ctx, "jobs", map[string]interface{}{"id": "d", "salaryMax": 1200000})
	require.NoError(t, err)
	bySalary, err := store.List(ctx, "jobs", map[string]string{"salaryMax": "1200000"})
	require.NoError(t, err)
	require.Len(t, bySalary, 1)
	assert.Equal(t, "d", bySalary[0]["id"])

	none, err := store.List(ctx, "saved_jobs", nil)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStore_ListSubSecondOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 0)
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base }
	_, err := store.Create(ctx, "messages", map[string]interface{}{"id": "first"})
	require.NoError(t, err)
	store.now = func() time.Time { return base.Add(500 * time.Millisecond) }
	_, err = store.Create(ctx, "messages", map[string]interface{}{"id": "a-second"})
	require.NoError(t, err)

	got, err := store.List(ctx, "messages", nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0]["id"])
	assert.Equal(t, "a-second", got[1]["id"])
	assert.Equal(t, "2025-01-01T10:00:00.500000000Z", got[1]["createdAt"])
}

func TestStore_UnknownCollection(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 0)

	_, err := store.List(ctx, "invoices", nil)
	assert.True(t, errors.Is(err, ErrUnknownCollection))
	_, err = store.Create(ctx, "invoices", map[string]interface{}{})
	assert.True(t, errors.Is(err, ErrUnknownCollection))
	assert.True(t, errors.Is(store.Delete(ctx, "invoices", "x"), ErrUnknownCollection))
}

func TestStore_DelayHonorsContext(t *testing.T) {
	store := newTestStore(t, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := store.List(ctx, "jobs", nil)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
}

func TestStore_DelayApplied(t *testing.T) {
	store := newTestStore(t, 30*time.Millisecond)

	start := time.Now()
	_, err := store.List(context.Background(), "jobs", nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

const testSeed = `
users:
  - email: Ana@Portal.io
    password: secret123
    role: candidate
    profileId: p-ana
collections:
  profiles:
    - id: p-ana
      role: candidate
      fullName: Ana Lima
  jobs:
    - id: j-1
      title: Go Developer
      status: active
      skills: [go, postgres]
`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 0)

	seed, err := LoadSeed(writeSeed(t, testSeed))
	require.NoError(t, err)

	seeded, err := store.SeedIfEmpty(ctx, seed)
	require.NoError(t, err)
	assert.True(t, seeded)

	job, err := store.Get(ctx, "jobs", "j-1")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"go", "postgres"}, job["skills"])

	seeded, err = store.SeedIfEmpty(ctx, seed)
	require.NoError(t, err)
	assert.False(t, seeded, "store already has records")

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLoadSeed_Errors(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadSeed(writeSeed(t, "collections:\n  invoices:\n    - id: x\n"))
	assert.True(t, errors.Is(err, ErrUnknownCollection))

	_, err = LoadSeed(writeSeed(t, "users: [\n"))
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 0)
	seed, err := LoadSeed(writeSeed(t, testSeed))
	require.NoError(t, err)
	_, err = store.SeedIfEmpty(ctx, seed)
	require.NoError(t, err)

	session, err := store.Login(ctx, " ana@portal.io ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "ana@portal.io", session.Email)
	assert.Equal(t, "candidate", session.Role)
	assert.Equal(t, "p-ana", session.ProfileID)
	assert.NotEmpty(t, session.Token)

	_, err = store.Login(ctx, "ana@portal.io", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = store.Login(ctx, "nobody@portal.io", "secret123")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}
