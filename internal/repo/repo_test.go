package repo

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Repository = (*PostgresUserRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
)

func exercise(t *testing.T, r Repository) {
	ctx := context.Background()
	login := "user-" + uuid.NewString()[:8]

	id, err := r.CreateUser(ctx, login, login+"@example.com", "hash")
	require.NoError(t, err)
	require.NotZero(t, id)

	gotID, hash, err := r.GetBylogin(ctx, login)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "hash", hash)

	gotID, hash, err = r.GetBylogin(ctx, "nobody-"+login)
	require.NoError(t, err)
	assert.Zero(t, gotID)
	assert.Empty(t, hash)

	saved, err := r.SaveDesign(ctx, Design{
		UserID:      id,
		Name:        "traction",
		Topology:    "IPM",
		TotalMassKG: 31.5,
		Input:       json.RawMessage(`{"topology":"IPM"}`),
		Result:      json.RawMessage(`{"ok":true}`),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	list, err := r.ListDesigns(ctx, id)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
	assert.Equal(t, "traction", list[0].Name)

	got, err := r.GetDesign(ctx, id, saved.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"topology":"IPM"}`, string(got.Input))
	assert.JSONEq(t, `{"ok":true}`, string(got.Result))
	assert.Equal(t, 31.5, got.TotalMassKG)

	_, err = r.GetDesign(ctx, id+1000, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.GetDesign(ctx, id, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	empty, err := r.ListDesigns(ctx, id+1000)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryRepository(t *testing.T) {
	exercise(t, NewMemoryRepository())
}

func TestMemoryRepositoryRejectsDuplicateLogin(t *testing.T) {
	r := NewMemoryRepository()
	_, err := r.CreateUser(context.Background(), "ann", "a@example.com", "h")
	require.NoError(t, err)
	_, err = r.CreateUser(context.Background(), "ann", "b@example.com", "h")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestMemoryRepositoryListsNewestFirst(t *testing.T) {
	r := NewMemoryRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	for _, name := range []string{"a", "b", "c"} {
		_, err := r.SaveDesign(context.Background(), Design{UserID: 1, Name: name})
		require.NoError(t, err)
	}
	list, err := r.ListDesigns(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestOpenRejectsEmptyURL(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

// Runs against a real server when MOTORSIZE_TEST_DATABASE_URL is set.
func TestPostgresRepository(t *testing.T) {
	url := os.Getenv("MOTORSIZE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MOTORSIZE_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := Open(ctx, url)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, EnsureSchema(ctx, db))

	exercise(t, NewPostgresUserDB(db))
}
