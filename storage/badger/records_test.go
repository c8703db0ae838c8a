package badger

import (
	"context"
	"testing"

	"github.com/poiesic/keyrank/core"
	"github.com/poiesic/keyrank/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRecordRepository_AddAndGet(t *testing.T) {
	repo, backend, err := NewMemoryRepository("people")
	require.NoError(t, err)
	defer backend.Close()
	defer repo.Close()

	ctx := context.Background()
	assert.Equal(t, "people", repo.Collection())

	added, err := repo.AddRecords(ctx,
		core.Record{"name": "Ana Lopez"},
		core.Record{"name": "Juan Perez"},
	)
	require.NoError(t, err)
	require.Len(t, added, 2)

	id, ok := added[0].ID()
	require.True(t, ok, "an ObjectID is assigned on insert")

	got, err := repo.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lopez", got["name"])

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRecordRepository_KeepsGivenIDs(t *testing.T) {
	repo, backend, err := NewMemoryRepository("people")
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	id := primitive.NewObjectID()

	_, err = repo.AddRecords(ctx, core.Record{"_id": id, "name": "Ana"})
	require.NoError(t, err)

	got, err := repo.GetRecord(ctx, id)
	require.NoError(t, err)
	gotID, _ := got.ID()
	assert.Equal(t, id, gotID)

	_, err = repo.AddRecords(ctx, core.Record{"_id": id, "name": "Ana again"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestRecordRepository_InvalidRecords(t *testing.T) {
	repo, backend, err := NewMemoryRepository("people")
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	_, err = repo.AddRecords(ctx, core.Record{"_id": "string-id"})
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)

	_, err = repo.AddRecords(ctx, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "a failed batch stores nothing")
}

func TestRecordRepository_GetMissing(t *testing.T) {
	repo, backend, err := NewMemoryRepository("people")
	require.NoError(t, err)
	defer backend.Close()

	_, err = repo.GetRecord(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	records, err := repo.GetRecords(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordRepository_ListInInsertionOrder(t *testing.T) {
	repo, backend, err := NewMemoryRepository("devices")
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	names := []string{"first", "second", "third"}
	for _, n := range names {
		_, err := repo.AddRecords(ctx, core.Record{"_id": primitive.NewObjectID(), "name": n})
		require.NoError(t, err)
	}

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, names[i], r["name"])
	}
}

func TestRecordRepository_CollectionsAreIsolated(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	people := NewRecordRepository(backend, "people")
	peopleArchive := NewRecordRepository(backend, "people-archive")

	_, err = people.AddRecords(ctx, core.Record{"name": "Ana"})
	require.NoError(t, err)
	_, err = peopleArchive.AddRecords(ctx, core.Record{"name": "Juan"}, core.Record{"name": "Eva"})
	require.NoError(t, err)

	n, err := people.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = peopleArchive.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecordRepository_Delete(t *testing.T) {
	repo, backend, err := NewMemoryRepository("people")
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	added, err := repo.AddRecords(ctx, core.Record{"name": "Ana"})
	require.NoError(t, err)
	id, _ := added[0].ID()

	require.NoError(t, repo.DeleteRecords(ctx, id))

	_, err = repo.GetRecord(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = repo.DeleteRecords(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
