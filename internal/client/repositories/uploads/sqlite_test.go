package uploads

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/client/migrations"
	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))

	r := NewSQLiteRepository(db)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return r
}

func TestRecordAndList(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Record(ctx, &models.Upload{PublicID: "p1", DraftID: "d1", URL: "u1", Digest: "h1", Size: 10}))
	require.NoError(t, r.Record(ctx, &models.Upload{PublicID: "p2", DraftID: "d1", URL: "u2", Digest: "h2", Size: 20}))
	require.NoError(t, r.Record(ctx, &models.Upload{PublicID: "p3", DraftID: "d2", URL: "u3", Digest: "h1", Size: 10}))

	list, err := r.ListByDraft(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p1", list[0].PublicID)
	assert.Equal(t, models.UploadActive, list[0].Status)
	assert.EqualValues(t, 20, list[1].Size)
	assert.False(t, list[0].CreatedAt.IsZero())

	same, err := r.FindByDigest(ctx, "h1")
	require.NoError(t, err)
	assert.Len(t, same, 2)
}

func TestRecord_UpsertByPublicID(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Record(ctx, &models.Upload{PublicID: "p1", DraftID: "d1", URL: "old", Digest: "h", Size: 1}))
	require.NoError(t, r.Record(ctx, &models.Upload{PublicID: "p1", DraftID: "d1", URL: "new", Digest: "h", Size: 1}))

	list, err := r.ListByDraft(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].URL)
}

func TestMarkOrphaned(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Record(ctx, &models.Upload{PublicID: "p1", DraftID: "d1", URL: "u1", Digest: "h1", Size: 1}))
	require.NoError(t, r.Record(ctx, &models.Upload{PublicID: "p2", DraftID: "d1", URL: "u2", Digest: "h2", Size: 1}))

	n, err := r.MarkOrphaned(ctx, "d1", "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = r.MarkOrphaned(ctx, "d1", "u1")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.MarkOrphaned(ctx, "other", "u2")
	require.NoError(t, err)
	assert.Zero(t, n)

	orphans, err := r.ListOrphans(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, "p1", orphans[0].PublicID)
	assert.Equal(t, models.UploadOrphaned, orphans[0].Status)

	active, err := r.FindByDigest(ctx, "h1")
	require.NoError(t, err)
	assert.Empty(t, active)
}
