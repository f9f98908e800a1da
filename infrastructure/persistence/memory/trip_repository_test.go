package memory

import (
	"context"
	"errors"
	"testing"

	"triptrek-backend/application/ports"
	"triptrek-backend/domain/core/entities"
	pkgerrors "triptrek-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *TripRepository {
	t.Helper()
	repo := NewTripRepository()
	for _, trip := range []*entities.Trip{
		{ID: "b", OwnerID: "u1", Destination: "Bergen", MapData: &entities.MapData{}},
		{ID: "a", OwnerID: "u2", Destination: "Aarhus"},
		{ID: "c", OwnerID: "u1", Destination: "Cork"},
	} {
		require.NoError(t, repo.Create(context.Background(), trip))
	}
	return repo
}

func ids(trips []*entities.Trip) []string {
	out := make([]string, len(trips))
	for i, trip := range trips {
		out[i] = trip.ID
	}
	return out
}

func TestTripRepository_CreateAndList(t *testing.T) {
	repo := seeded(t)
	ctx := context.Background()

	err := repo.Create(ctx, &entities.Trip{ID: "a"})
	assert.True(t, errors.Is(err, pkgerrors.ErrTripAlreadyExists))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids(all))

	mine, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(mine))
}

func TestTripRepository_ReturnsCopies(t *testing.T) {
	repo := seeded(t)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, ports.TripKey{TripID: "b"})
	require.NoError(t, err)
	got.Destination = "mutated"

	again, err := repo.GetByID(ctx, ports.TripKey{TripID: "b"})
	require.NoError(t, err)
	assert.Equal(t, "Bergen", again.Destination)
}

func TestTripRepository_Save(t *testing.T) {
	repo := seeded(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &entities.Trip{ID: "a", Destination: "Aalborg"}))
	got, _ := repo.GetByID(ctx, ports.TripKey{TripID: "a"})
	assert.Equal(t, "Aalborg", got.Destination)

	err := repo.Save(ctx, &entities.Trip{ID: "zzz"})
	assert.True(t, errors.Is(err, pkgerrors.ErrTripNotFound))
}

func TestTripRepository_UpdateAttributes(t *testing.T) {
	repo := seeded(t)
	ctx := context.Background()
	days := []entities.Day{{Date: "01/01/2025", Activities: []entities.Activity{}}}

	updated, err := repo.UpdateAttributes(ctx, ports.TripKey{TripID: "b"}, map[string]interface{}{
		"endDate":   "01/01/2025",
		"itinerary": days,
		"mapData":   nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "01/01/2025", updated["endDate"])
	assert.NotContains(t, updated, "mapData")

	got, _ := repo.GetByID(ctx, ports.TripKey{TripID: "b"})
	assert.Equal(t, "01/01/2025", got.EndDate)
	assert.Equal(t, days, got.Itinerary)
	assert.Nil(t, got.MapData)

	_, err = repo.UpdateAttributes(ctx, ports.TripKey{TripID: "b"}, map[string]interface{}{"ownerId": "u9"})
	assert.True(t, errors.Is(err, pkgerrors.ErrUnsupportedAttribute))
	got, _ = repo.GetByID(ctx, ports.TripKey{TripID: "b"})
	assert.Equal(t, "u1", got.OwnerID)

	_, err = repo.UpdateAttributes(ctx, ports.TripKey{TripID: "nope"}, map[string]interface{}{"endDate": "x"})
	assert.True(t, errors.Is(err, pkgerrors.ErrTripNotFound))
}

func TestTripRepository_Delete(t *testing.T) {
	repo := seeded(t)
	ctx := context.Background()

	deleted, err := repo.Delete(ctx, ports.TripKey{TripID: "a"})
	require.NoError(t, err)
	assert.Equal(t, "Aarhus", deleted.Destination)

	_, err = repo.Delete(ctx, ports.TripKey{TripID: "a"})
	assert.True(t, errors.Is(err, pkgerrors.ErrTripNotFound))

	all, _ := repo.ListAll(ctx)
	assert.Equal(t, []string{"b", "c"}, ids(all))

	require.NoError(t, repo.Create(ctx, &entities.Trip{ID: "a"}))
	all, _ = repo.ListAll(ctx)
	assert.Equal(t, []string{"b", "c", "a"}, ids(all))
}
