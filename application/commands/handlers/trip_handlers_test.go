package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"triptrek-backend/application/commands"
	"triptrek-backend/application/commands/handlers"
	"triptrek-backend/application/ports"
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/domain/core/validators"
	"triptrek-backend/domain/events"
	"triptrek-backend/infrastructure/persistence/memory"
	pkgerrors "triptrek-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

type recordingBus struct {
	mu     sync.Mutex
	events []events.DomainEvent
	err    error
}

func (b *recordingBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return b.err
}

func (b *recordingBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		if err := b.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]string, len(b.events))
	for i, e := range b.events {
		types[i] = e.GetEventType()
	}
	return types
}

type mapCache struct {
	deleted []string
	evicted []string
}

func (c *mapCache) Get(ctx context.Context, key string) (interface{}, bool) { return nil, false }
func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	return nil
}
func (c *mapCache) Delete(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	return nil
}
func (c *mapCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.evicted = append(c.evicted, prefix)
	return nil
}
func (c *mapCache) Clear(ctx context.Context) error { return nil }

type fixture struct {
	repo   *memory.TripRepository
	bus    *recordingBus
	cache  *mapCache
	writer *handlers.TripWriter
}

func newFixture() *fixture {
	f := &fixture{
		repo:  memory.NewTripRepository(),
		bus:   &recordingBus{},
		cache: &mapCache{},
	}
	f.writer = handlers.NewTripWriter(
		f.repo,
		validators.NewTripValidator(nil),
		f.bus,
		f.cache,
		nil,
		zap.NewNop(),
	).WithClock(func() time.Time { return fixedNow })
	return f
}

func kyotoTrip() entities.Trip {
	return entities.Trip{
		ID:          "trip-1",
		Destination: "Kyoto",
		StartDate:   "07/20/2025",
		EndDate:     "07/22/2025",
		Itinerary: []entities.Day{
			{Date: "07/21/2025", Activities: []entities.Activity{
				{Time: "2:00 PM", Name: "Tea ceremony"},
				{Time: "9:00 AM", Name: "Fushimi Inari"},
			}},
		},
		MapData: &entities.MapData{Coords: entities.LatLng{Lat: 35.01, Lng: 135.76}},
	}
}

func (f *fixture) create(t *testing.T, trip entities.Trip, owner string) {
	t.Helper()
	err := handlers.NewCreateTripHandler(f.writer).Handle(context.Background(), commands.CreateTripCommand{
		Trip:    trip,
		OwnerID: owner,
	})
	require.NoError(t, err)
}

func (f *fixture) stored(t *testing.T, id string) *entities.Trip {
	t.Helper()
	trip, err := f.repo.GetByID(context.Background(), ports.TripKey{TripID: id})
	require.NoError(t, err)
	return trip
}

func TestCreateTripHandler(t *testing.T) {
	f := newFixture()
	f.create(t, kyotoTrip(), "user-1")

	trip := f.stored(t, "trip-1")
	assert.Equal(t, "user-1", trip.OwnerID)
	assert.Equal(t, "2025-07-01T12:00:00Z", trip.CreatedAt)
	assert.Equal(t, trip.CreatedAt, trip.UpdatedAt)

	require.Len(t, trip.Itinerary, 3)
	assert.Equal(t, []string{"07/20/2025", "07/21/2025", "07/22/2025"}, trip.Dates())
	assert.Empty(t, trip.Itinerary[0].Activities)
	assert.Equal(t, "Fushimi Inari", trip.Itinerary[1].Activities[0].Name)
	assert.Equal(t, "Tea ceremony", trip.Itinerary[1].Activities[1].Name)

	assert.Equal(t, []string{events.TypeTripCreated}, f.bus.types())
	assert.Equal(t, []string{ports.TripCachePrefix("trip-1")}, f.cache.evicted)
}

func TestCreateTripHandler_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*commands.CreateTripCommand)
		wantErr error
	}{
		{
			name:    "id with separator",
			mutate:  func(c *commands.CreateTripCommand) { c.Trip.ID = "a#b" },
			wantErr: nil,
		},
		{
			name: "empty itinerary without confirmation",
			mutate: func(c *commands.CreateTripCommand) {
				c.Trip.Itinerary = nil
			},
			wantErr: pkgerrors.ErrConfirmationRequired,
		},
		{
			name: "end before start",
			mutate: func(c *commands.CreateTripCommand) {
				c.Trip.EndDate = "07/19/2025"
			},
			wantErr: nil,
		},
		{
			name: "bad activity time",
			mutate: func(c *commands.CreateTripCommand) {
				c.Trip.Itinerary[0].Activities[0].Time = "25:00"
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			cmd := commands.CreateTripCommand{Trip: kyotoTrip()}
			tt.mutate(&cmd)

			err := handlers.NewCreateTripHandler(f.writer).Handle(context.Background(), cmd)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}

			_, getErr := f.repo.GetByID(context.Background(), ports.TripKey{TripID: cmd.Trip.ID})
			assert.True(t, errors.Is(getErr, pkgerrors.ErrTripNotFound))
			assert.Empty(t, f.bus.types())
		})
	}
}

func TestCreateTripHandler_ConfirmEmpty(t *testing.T) {
	f := newFixture()
	trip := kyotoTrip()
	trip.Itinerary = nil

	err := handlers.NewCreateTripHandler(f.writer).Handle(context.Background(), commands.CreateTripCommand{
		Trip:         trip,
		ConfirmEmpty: true,
	})
	require.NoError(t, err)
	assert.Len(t, f.stored(t, "trip-1").Itinerary, 3)
}

func TestCreateTripHandler_Duplicate(t *testing.T) {
	f := newFixture()
	f.create(t, kyotoTrip(), "")

	err := handlers.NewCreateTripHandler(f.writer).Handle(context.Background(), commands.CreateTripCommand{Trip: kyotoTrip()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrTripAlreadyExists))
}

func TestCreateTripHandler_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.bus.err = errors.New("bus down")

	f.create(t, kyotoTrip(), "")
	f.stored(t, "trip-1")
}

func TestSaveTripHandler(t *testing.T) {
	f := newFixture()
	f.create(t, kyotoTrip(), "user-1")
	created := f.stored(t, "trip-1")

	edited := kyotoTrip()
	edited.Destination = "Osaka"
	edited.StartDate = "07/21/2025"
	edited.EndDate = "07/23/2025"
	edited.CreatedAt = "ignored"

	f.writer.WithClock(func() time.Time { return fixedNow.Add(time.Hour) })
	err := handlers.NewSaveTripHandler(f.writer).Handle(context.Background(), commands.SaveTripCommand{
		Trip:    edited,
		OwnerID: "user-1",
	})
	require.NoError(t, err)

	saved := f.stored(t, "trip-1")
	assert.Equal(t, "Osaka", saved.Destination)
	assert.Nil(t, saved.MapData, "map data of the old destination is cleared")
	assert.Equal(t, created.CreatedAt, saved.CreatedAt)
	assert.Equal(t, "2025-07-01T13:00:00Z", saved.UpdatedAt)
	assert.Equal(t, "user-1", saved.OwnerID)
	assert.Equal(t, []string{"07/21/2025", "07/22/2025", "07/23/2025"}, saved.Dates())
	assert.Len(t, saved.Itinerary[0].Activities, 2)

	assert.Equal(t, []string{events.TypeTripCreated, events.TypeTripUpdated}, f.bus.types())
}

func TestSaveTripHandler_ShrinkDropsIncompleteDay(t *testing.T) {
	f := newFixture()
	f.create(t, kyotoTrip(), "")

	edited := kyotoTrip()
	edited.EndDate = "07/21/2025"
	edited.Itinerary = append(edited.Itinerary, entities.Day{
		Date:       "07/22/2025",
		Activities: []entities.Activity{{Time: "9:00 AM", Name: ""}},
	})

	err := handlers.NewSaveTripHandler(f.writer).Handle(context.Background(), commands.SaveTripCommand{Trip: edited})
	require.NoError(t, err)

	saved := f.stored(t, "trip-1")
	assert.Equal(t, []string{"07/20/2025", "07/21/2025"}, saved.Dates())
	assert.Len(t, saved.Itinerary[1].Activities, 2)
}

func TestSaveTripHandler_IncompleteDayInRangeIsRejected(t *testing.T) {
	f := newFixture()
	f.create(t, kyotoTrip(), "")

	edited := kyotoTrip()
	edited.Destination = ""
	edited.Itinerary = append(edited.Itinerary, entities.Day{
		Date:       "07/22/2025",
		Activities: []entities.Activity{{Time: "9:00 AM", Name: ""}},
	})

	err := handlers.NewSaveTripHandler(f.writer).Handle(context.Background(), commands.SaveTripCommand{Trip: edited})
	var verrs *pkgerrors.ValidationErrors
	require.True(t, errors.As(err, &verrs), "got %v", err)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "destination")
	assert.Contains(t, fields, "itinerary[1].activities[0].name")
	assert.Equal(t, "Kyoto", f.stored(t, "trip-1").Destination)
}

func TestSaveTripHandler_KeepsNewMapData(t *testing.T) {
	f := newFixture()
	f.create(t, kyotoTrip(), "")

	edited := kyotoTrip()
	edited.Destination = "Osaka"
	edited.MapData = &entities.MapData{Coords: entities.LatLng{Lat: 34.69, Lng: 135.50}}

	err := handlers.NewSaveTripHandler(f.writer).Handle(context.Background(), commands.SaveTripCommand{Trip: edited})
	require.NoError(t, err)

	saved := f.stored(t, "trip-1")
	require.NotNil(t, saved.MapData)
	assert.Equal(t, 34.69, saved.MapData.Coords.Lat)
}

func TestSaveTripHandler_ForeignOwner(t *testing.T) {
	f := newFixture()
	f.create(t, kyotoTrip(), "user-1")

	err := handlers.NewSaveTripHandler(f.writer).Handle(context.Background(), commands.SaveTripCommand{
		Trip:    kyotoTrip(),
		OwnerID: "user-2",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrTripNotFound))
}

func TestSaveTripHandler_Missing(t *testing.T) {
	f := newFixture()

	err := handlers.NewSaveTripHandler(f.writer).Handle(context.Background(), commands.SaveTripCommand{Trip: kyotoTrip()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrTripNotFound))
}

func patch(f *fixture, attribute string, value interface{}) error {
	raw, _ := json.Marshal(value)
	return handlers.NewPatchTripAttributeHandler(f.writer).Handle(context.Background(), commands.PatchTripAttributeCommand{
		TripID:        "trip-1",
		AttributeName: attribute,
		NewValue:      raw,
	})
}

func TestPatchTripAttributeHandler(t *testing.T) {
	t.Run("end date shrinks the itinerary", func(t *testing.T) {
		f := newFixture()
		f.create(t, kyotoTrip(), "")

		require.NoError(t, patch(f, "endDate", "07/20/2025"))

		trip := f.stored(t, "trip-1")
		assert.Equal(t, "07/20/2025", trip.EndDate)
		assert.Equal(t, []string{"07/20/2025"}, trip.Dates())
		assert.Equal(t, "2025-07-01T12:00:00Z", trip.UpdatedAt)
	})

	t.Run("start date extends the itinerary", func(t *testing.T) {
		f := newFixture()
		f.create(t, kyotoTrip(), "")

		require.NoError(t, patch(f, "startDate", "07/18/2025"))

		trip := f.stored(t, "trip-1")
		assert.Equal(t, []string{"07/18/2025", "07/19/2025", "07/20/2025", "07/21/2025", "07/22/2025"}, trip.Dates())
		assert.Len(t, trip.Itinerary[3].Activities, 2)
	})

	t.Run("itinerary is reconciled against the bounds", func(t *testing.T) {
		f := newFixture()
		f.create(t, kyotoTrip(), "")

		days := []entities.Day{
			{Date: "07/22/2025", Activities: []entities.Activity{{Time: "8:00 PM", Name: "Dinner"}}},
			{Date: "08/01/2025", Activities: []entities.Activity{{Time: "8:00 PM", Name: "Out of range"}}},
		}
		require.NoError(t, patch(f, "itinerary", days))

		trip := f.stored(t, "trip-1")
		require.Len(t, trip.Itinerary, 3)
		assert.Empty(t, trip.Itinerary[1].Activities)
		assert.Equal(t, "Dinner", trip.Itinerary[2].Activities[0].Name)
	})

	t.Run("itinerary days outside the range are not validated", func(t *testing.T) {
		f := newFixture()
		f.create(t, kyotoTrip(), "")

		days := []entities.Day{
			{Date: "07/21/2025", Activities: []entities.Activity{{Time: "10:00 AM", Name: "Nishiki market"}}},
			{Date: "07/30/2025", Activities: []entities.Activity{{Time: "", Name: ""}}},
		}
		require.NoError(t, patch(f, "itinerary", days))

		trip := f.stored(t, "trip-1")
		assert.Equal(t, []string{"07/20/2025", "07/21/2025", "07/22/2025"}, trip.Dates())
		assert.Equal(t, "Nishiki market", trip.Itinerary[1].Activities[0].Name)
	})

	t.Run("destination drops map data", func(t *testing.T) {
		f := newFixture()
		f.create(t, kyotoTrip(), "")

		require.NoError(t, patch(f, "destination", "Nara"))

		trip := f.stored(t, "trip-1")
		assert.Equal(t, "Nara", trip.Destination)
		assert.Nil(t, trip.MapData)
		assert.Contains(t, f.bus.types(), events.TypeTripAttributeChanged)
	})

	t.Run("image url", func(t *testing.T) {
		f := newFixture()
		f.create(t, kyotoTrip(), "")

		require.NoError(t, patch(f, "imageUrl", "https://bucket.s3.us-east-1.amazonaws.com/a.jpg"))
		assert.Equal(t, "https://bucket.s3.us-east-1.amazonaws.com/a.jpg", f.stored(t, "trip-1").ImageURL)

		err := patch(f, "imageUrl", "not a url")
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestPatchTripAttributeHandler_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		attribute string
		value     interface{}
		check     func(t *testing.T, err error)
	}{
		{
			name:      "unsupported attribute",
			attribute: "ownerId",
			value:     "someone",
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, pkgerrors.ErrUnsupportedAttribute))
			},
		},
		{
			name:      "end before start",
			attribute: "endDate",
			value:     "07/01/2025",
			check: func(t *testing.T, err error) {
				var verrs *pkgerrors.ValidationErrors
				assert.True(t, errors.As(err, &verrs))
			},
		},
		{
			name:      "wrong value type",
			attribute: "startDate",
			value:     42,
			check: func(t *testing.T, err error) {
				assert.True(t, pkgerrors.IsValidation(err))
			},
		},
		{
			name:      "blank destination",
			attribute: "destination",
			value:     "   ",
			check: func(t *testing.T, err error) {
				var verrs *pkgerrors.ValidationErrors
				assert.True(t, errors.As(err, &verrs))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.create(t, kyotoTrip(), "")
			before := f.stored(t, "trip-1")

			err := patch(f, tt.attribute, tt.value)
			require.Error(t, err)
			tt.check(t, err)

			assert.Equal(t, before, f.stored(t, "trip-1"))
		})
	}
}

func TestDeleteTripHandler(t *testing.T) {
	f := newFixture()
	f.create(t, kyotoTrip(), "user-1")
	handler := handlers.NewDeleteTripHandler(f.writer)

	err := handler.Handle(context.Background(), commands.DeleteTripCommand{TripID: "trip-1", OwnerID: "user-2"})
	assert.True(t, errors.Is(err, pkgerrors.ErrTripNotFound))

	require.NoError(t, handler.Handle(context.Background(), commands.DeleteTripCommand{TripID: "trip-1", OwnerID: "user-1"}))

	_, err = f.repo.GetByID(context.Background(), ports.TripKey{TripID: "trip-1"})
	assert.True(t, errors.Is(err, pkgerrors.ErrTripNotFound))
	assert.Equal(t, []string{events.TypeTripCreated, events.TypeTripDeleted}, f.bus.types())

	err = handler.Handle(context.Background(), commands.DeleteTripCommand{TripID: "trip-1"})
	assert.True(t, errors.Is(err, pkgerrors.ErrTripNotFound))
}

func TestAttachTripImageHandler(t *testing.T) {
	f := newFixture()
	f.create(t, kyotoTrip(), "")

	err := handlers.NewAttachTripImageHandler(f.writer).Handle(context.Background(), commands.AttachTripImageCommand{
		TripID:   "trip-1",
		ImageURL: "https://bucket.s3.us-east-1.amazonaws.com/locations/trip-1/x.png",
	})
	require.NoError(t, err)

	trip := f.stored(t, "trip-1")
	assert.Equal(t, "https://bucket.s3.us-east-1.amazonaws.com/locations/trip-1/x.png", trip.ImageURL)
	assert.Len(t, trip.Itinerary, 3)
	assert.Contains(t, f.bus.types(), events.TypeTripImageAttached)
}

func TestSaveImageMetadataHandler(t *testing.T) {
	repo := memory.NewImageRepository()
	bus := &recordingBus{}
	handler := handlers.NewSaveImageMetadataHandler(repo, bus, zap.NewNop())

	err := handler.Handle(context.Background(), commands.SaveImageMetadataCommand{
		ImageID:      "img-1",
		LocationName: "Kyoto",
		ImageURL:     "https://bucket.s3.us-east-1.amazonaws.com/uploads/Kyoto/img-1.jpg",
	})
	require.NoError(t, err)

	images, err := repo.ListByLocation(context.Background(), "Kyoto")
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "img-1", images[0].ID)
	assert.False(t, images[0].UploadedAt.IsZero())
	assert.Equal(t, []string{events.TypeImageUploaded}, bus.types())
}
