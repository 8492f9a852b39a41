package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleRun(root string) *Run {
	return &Run{
		CreatedAt:     time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC),
		Root:          root,
		Artifact:      "webapp_20260820-143000.snapshot.txt",
		Format:        "text",
		TotalFiles:    124,
		IncludedFiles: 118,
		SkippedFiles:  6,
		TotalBytes:    482000,
		TokenEstimate: 120500,
		DurationMs:    840,
		Version:       "1.2.0",
	}
}

// ---------------------------------------------------------------------------
// Open / migrations
// ---------------------------------------------------------------------------

func TestOpen_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "history.db")

	db, err := Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = os.Stat(dbPath)
	require.NoError(t, err)
}

func TestMigrate_SetsSchemaVersion(t *testing.T) {
	db := newTestDB(t)

	var version int
	err := db.Conn().QueryRow("SELECT version FROM schema_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate())

	_, err := db.InsertRun(sampleRun("/home/dev/webapp"))
	require.NoError(t, err)
}

// ---------------------------------------------------------------------------
// Runs
// ---------------------------------------------------------------------------

func TestInsertRun_RoundTrip(t *testing.T) {
	db := newTestDB(t)

	in := sampleRun("/home/dev/webapp")
	in.Compressed = true
	in.Truncated = true

	id, err := db.InsertRun(in)
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	got, err := db.GetRun(id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, id, got.ID)
	assert.True(t, got.CreatedAt.Equal(in.CreatedAt))
	assert.Equal(t, in.Root, got.Root)
	assert.Equal(t, in.Artifact, got.Artifact)
	assert.Equal(t, in.Format, got.Format)
	assert.True(t, got.Compressed)
	assert.Equal(t, in.TotalFiles, got.TotalFiles)
	assert.Equal(t, in.IncludedFiles, got.IncludedFiles)
	assert.Equal(t, in.SkippedFiles, got.SkippedFiles)
	assert.Equal(t, in.TotalBytes, got.TotalBytes)
	assert.Equal(t, in.TokenEstimate, got.TokenEstimate)
	assert.True(t, got.Truncated)
	assert.Equal(t, in.DurationMs, got.DurationMs)
	assert.Equal(t, in.Version, got.Version)
}

func TestInsertRun_FillsZeroCreatedAt(t *testing.T) {
	db := newTestDB(t)

	in := sampleRun("/home/dev/webapp")
	in.CreatedAt = time.Time{}

	id, err := db.InsertRun(in)
	require.NoError(t, err)

	got, err := db.GetRun(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetRun_Missing(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetRun(999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLatestRun_EmptyDatabase(t *testing.T) {
	db := newTestDB(t)

	got, err := db.LatestRun("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLatestRun_FiltersByRoot(t *testing.T) {
	db := newTestDB(t)

	_, err := db.InsertRun(sampleRun("/home/dev/webapp"))
	require.NoError(t, err)

	other := sampleRun("/home/dev/api")
	other.Artifact = "api_20260820-150000.snapshot.txt"
	_, err = db.InsertRun(other)
	require.NoError(t, err)

	got, err := db.LatestRun("/home/dev/webapp")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "/home/dev/webapp", got.Root)

	// Empty root returns the newest run overall.
	latest, err := db.LatestRun("")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "/home/dev/api", latest.Root)
}

func TestListRuns_NewestFirst(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 3; i++ {
		r := sampleRun("/home/dev/webapp")
		r.IncludedFiles = 100 + i
		_, err := db.InsertRun(r)
		require.NoError(t, err)
	}

	runs, err := db.ListRuns("/home/dev/webapp", 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.Equal(t, 102, runs[0].IncludedFiles)
	assert.Equal(t, 101, runs[1].IncludedFiles)
	assert.Equal(t, 100, runs[2].IncludedFiles)
}

func TestListRuns_AppliesLimit(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 5; i++ {
		_, err := db.InsertRun(sampleRun("/home/dev/webapp"))
		require.NoError(t, err)
	}

	runs, err := db.ListRuns("", 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	// Non-positive limits fall back to the default rather than listing nothing.
	runs, err = db.ListRuns("", 0)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestPruneRuns_KeepsNewest(t *testing.T) {
	db := newTestDB(t)

	var lastID int64
	for i := 0; i < 5; i++ {
		id, err := db.InsertRun(sampleRun("/home/dev/webapp"))
		require.NoError(t, err)
		lastID = id
	}

	deleted, err := db.PruneRuns("/home/dev/webapp", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	runs, err := db.ListRuns("/home/dev/webapp", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, lastID, runs[0].ID)
}

func TestPruneRuns_LeavesOtherRootsAlone(t *testing.T) {
	db := newTestDB(t)

	_, err := db.InsertRun(sampleRun("/home/dev/webapp"))
	require.NoError(t, err)
	_, err = db.InsertRun(sampleRun("/home/dev/api"))
	require.NoError(t, err)

	_, err = db.PruneRuns("/home/dev/webapp", 0)
	require.NoError(t, err)

	runs, err := db.ListRuns("/home/dev/api", 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

// ---------------------------------------------------------------------------
// Delta
// ---------------------------------------------------------------------------

func TestDelta(t *testing.T) {
	prev := sampleRun("/home/dev/webapp")
	cur := sampleRun("/home/dev/webapp")
	cur.IncludedFiles = 125
	cur.TotalBytes = 500000

	d := Delta(prev, cur)
	require.NotNil(t, d)
	assert.Equal(t, 7, d.FilesDelta)
	assert.Equal(t, int64(18000), d.BytesDelta)

	assert.Nil(t, Delta(nil, cur))
	assert.Nil(t, Delta(prev, nil))
}
