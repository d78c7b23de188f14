package drafts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/client/migrations"
	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupRepo(t *testing.T) (*SQLiteRepository, *time.Time) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))

	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewSQLiteRepository(db)
	r.now = func() time.Time { return clock }
	return r, &clock
}

func TestCreateAndGet(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	d := &models.Draft{ID: "d1", Title: "Bike", Images: []string{"u2", "u1"}}
	require.NoError(t, r.Create(ctx, d))
	assert.False(t, d.UpdatedAt.IsZero())

	got, err := r.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Bike", got.Title)
	assert.Equal(t, []string{"u2", "u1"}, got.Images)
	assert.Empty(t, got.ListingID)
	assert.True(t, d.UpdatedAt.Equal(got.UpdatedAt))
}

func TestCreate_NilImagesStoredAsEmpty(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.Draft{ID: "d1", Title: "x"}))
	got, err := r.Get(ctx, "d1")
	require.NoError(t, err)
	assert.NotNil(t, got.Images)
	assert.Empty(t, got.Images)
}

func TestGet_NotFound(t *testing.T) {
	r, _ := setupRepo(t)
	_, err := r.Get(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSetImagesAndListing(t *testing.T) {
	r, clock := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, &models.Draft{ID: "d1", Title: "x"}))

	*clock = clock.Add(time.Minute)
	require.NoError(t, r.SetImages(ctx, "d1", []string{"a", "b"}))
	require.NoError(t, r.SetListing(ctx, "d1", "L-7"))

	got, err := r.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Images)
	assert.Equal(t, "L-7", got.ListingID)
	assert.True(t, got.UpdatedAt.Equal(*clock))

	require.ErrorIs(t, r.SetImages(ctx, "nope", nil), common.ErrorNotFound)
	require.ErrorIs(t, r.SetListing(ctx, "nope", "x"), common.ErrorNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	r, clock := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.Draft{ID: "old", Title: "old"}))
	*clock = clock.Add(time.Hour)
	require.NoError(t, r.Create(ctx, &models.Draft{ID: "new", Title: "new"}))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
}

func TestDelete(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, &models.Draft{ID: "d1", Title: "x"}))

	require.NoError(t, r.Delete(ctx, "d1"))
	require.ErrorIs(t, r.Delete(ctx, "d1"), common.ErrorNotFound)
}
