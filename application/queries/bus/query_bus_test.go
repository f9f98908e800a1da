package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookup struct{ id string }

func (q lookup) Validate() error {
	if q.id == "" {
		return errors.New("id is required")
	}
	return nil
}

func (q lookup) CacheKey() string { return "lookup:" + q.id }

type listing struct{}

func (listing) Validate() error { return nil }

type mapCache map[string]interface{}

func (c mapCache) Get(ctx context.Context, key string) (interface{}, bool) {
	v, ok := c[key]
	return v, ok
}

func (c mapCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c[key] = value
	return nil
}

type observation struct {
	queryType string
	failed    bool
}

type recorder struct{ seen []observation }

func (r *recorder) ObserveQuery(queryType string, duration time.Duration, err error) {
	r.seen = append(r.seen, observation{queryType: queryType, failed: err != nil})
}

func countingHandler(calls *int, err error) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		*calls++
		if err != nil {
			return nil, err
		}
		return *calls, nil
	})
}

func TestQueryBus_Ask(t *testing.T) {
	b := NewQueryBus()
	calls := 0
	require.NoError(t, b.Register(lookup{}, countingHandler(&calls, nil)))
	assert.Error(t, b.Register(lookup{}, countingHandler(&calls, nil)))

	result, err := b.Ask(context.Background(), lookup{id: "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, result)

	_, err = b.Ask(context.Background(), lookup{})
	assert.ErrorContains(t, err, "query validation failed")
	assert.Equal(t, 1, calls)

	_, err = b.Ask(context.Background(), listing{})
	assert.True(t, errors.Is(err, ErrHandlerNotFound))
}

func TestQueryBus_CachingOnlyCacheableQueries(t *testing.T) {
	cache := mapCache{}
	b := NewQueryBus(Caching(cache, 60))

	lookups, listings := 0, 0
	require.NoError(t, b.Register(lookup{}, countingHandler(&lookups, nil)))
	require.NoError(t, b.Register(listing{}, countingHandler(&listings, nil)))

	for i := 0; i < 3; i++ {
		result, err := b.Ask(context.Background(), lookup{id: "a"})
		require.NoError(t, err)
		assert.Equal(t, 1, result)

		_, err = b.Ask(context.Background(), listing{})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, lookups)
	assert.Equal(t, 3, listings)
	assert.Contains(t, cache, "lookup:a")

	delete(cache, "lookup:a")
	result, err := b.Ask(context.Background(), lookup{id: "a"})
	require.NoError(t, err)
	assert.Equal(t, 2, result)
}

func TestQueryBus_CachingSkipsFailures(t *testing.T) {
	cache := mapCache{}
	b := NewQueryBus(Caching(cache, 60))
	calls := 0
	require.NoError(t, b.Register(lookup{}, countingHandler(&calls, errors.New("missing"))))

	_, err := b.Ask(context.Background(), lookup{id: "a"})
	assert.ErrorContains(t, err, "query handler failed")
	assert.Empty(t, cache)
}

func TestQueryBus_Timing(t *testing.T) {
	rec := &recorder{}
	b := NewQueryBus(Timing(rec))
	ok, failing := 0, 0
	require.NoError(t, b.Register(lookup{}, countingHandler(&ok, nil)))
	require.NoError(t, b.Register(listing{}, countingHandler(&failing, errors.New("boom"))))

	_, _ = b.Ask(context.Background(), lookup{id: "a"})
	_, _ = b.Ask(context.Background(), listing{})

	assert.Equal(t, []observation{
		{queryType: "lookup"},
		{queryType: "listing", failed: true},
	}, rec.seen)
}
