package biz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deliverybiz "github.com/shopscout/shopscout-backend/internal/delivery/biz"
	apperrors "github.com/shopscout/shopscout-backend/internal/pkg/errors"
	"github.com/shopscout/shopscout-backend/internal/pkg/workerpool"
	"github.com/shopscout/shopscout-backend/internal/search/adapter"
	"github.com/shopscout/shopscout-backend/internal/search/types"
)

// fakeAdapter simulates one source with a scripted outcome
type fakeAdapter struct {
	id    types.SourceID
	items []*types.Item
	err   error
	delay time.Duration
}

func (f *fakeAdapter) Fetch(ctx context.Context, _ *types.Query) ([]*types.Item, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeAdapter) ID() types.SourceID { return f.id }
func (f *fakeAdapter) Name() string       { return string(f.id) }
func (f *fakeAdapter) Validate() error    { return nil }

// denyGate rules out a fixed set of sources for every pincode
type denyGate struct {
	denied map[types.SourceID]bool
	calls  int
}

func (g *denyGate) IsDeliverable(_ context.Context, _ string, source types.SourceID) bool {
	g.calls++
	return !g.denied[source]
}

// stalledLookup simulates a postal dependency that hangs before failing
type stalledLookup struct {
	calls int
	delay time.Duration
}

func (s *stalledLookup) Lookup(_ context.Context, _ string) (*deliverybiz.PincodeInfo, error) {
	s.calls++
	time.Sleep(s.delay)
	return nil, errors.New("postal api unreachable")
}

func fakeItems(source types.SourceID, n int) []*types.Item {
	items := make([]*types.Item, n)
	for i := range items {
		items[i] = &types.Item{
			Source:   source,
			ID:       string(source) + "-item",
			Name:     "Product",
			Price:    decimal.NewFromInt(1000),
			Currency: "INR",
			InStock:  true,
		}
	}
	return items
}

func newTestPool(t *testing.T) *workerpool.Pool {
	t.Helper()
	pool, err := workerpool.New(nil, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Shutdown)
	return pool
}

func adaptersOf(fakes ...*fakeAdapter) []adapter.SourceAdapter {
	out := make([]adapter.SourceAdapter, len(fakes))
	for i, f := range fakes {
		out[i] = f
	}
	return out
}

func TestOrchestrator_SearchAll_OneSlotPerSource(t *testing.T) {
	o := NewOrchestrator(adaptersOf(
		&fakeAdapter{id: types.SourceAmazon, items: fakeItems(types.SourceAmazon, 2)},
		&fakeAdapter{id: types.SourceFlipkart, items: fakeItems(types.SourceFlipkart, 1)},
	), nil, newTestPool(t), nil, nil)

	set := o.SearchAll(context.Background(), &types.Query{ID: "q1", Text: "headphones"})
	require.Len(t, set, 2)
	assert.Equal(t, types.StatusSuccess, set[types.SourceAmazon].Status)
	assert.Len(t, set[types.SourceAmazon].Items, 2)
	assert.Equal(t, types.StatusSuccess, set[types.SourceFlipkart].Status)
	assert.Len(t, set[types.SourceFlipkart].Items, 1)
}

func TestOrchestrator_SearchAll_FailureIsolation(t *testing.T) {
	o := NewOrchestrator(adaptersOf(
		&fakeAdapter{id: types.SourceAmazon, items: fakeItems(types.SourceAmazon, 3)},
		&fakeAdapter{id: types.SourceFlipkart, err: errors.New("upstream 500")},
	), nil, newTestPool(t), nil, nil)

	set := o.SearchAll(context.Background(), &types.Query{ID: "q1", Text: "headphones"})

	assert.Equal(t, types.StatusSuccess, set[types.SourceAmazon].Status)
	assert.Len(t, set[types.SourceAmazon].Items, 3)

	failed := set[types.SourceFlipkart]
	assert.Equal(t, types.StatusError, failed.Status)
	assert.Contains(t, failed.Error, "upstream 500")
	assert.Empty(t, failed.Items)
}

func TestOrchestrator_SearchAll_Timeout(t *testing.T) {
	o := NewOrchestrator(adaptersOf(
		&fakeAdapter{id: types.SourceAmazon, items: fakeItems(types.SourceAmazon, 1)},
		&fakeAdapter{id: types.SourceMyntra, delay: 500 * time.Millisecond, items: fakeItems(types.SourceMyntra, 1)},
	), nil, newTestPool(t), &Config{SourceTimeout: 50 * time.Millisecond}, nil)

	start := time.Now()
	set := o.SearchAll(context.Background(), &types.Query{ID: "q1", Text: "headphones"})
	elapsed := time.Since(start)

	assert.Equal(t, types.StatusSuccess, set[types.SourceAmazon].Status)
	assert.Equal(t, types.StatusError, set[types.SourceMyntra].Status)
	assert.Contains(t, set[types.SourceMyntra].Error, "timed out")
	// the slow source is abandoned at its deadline, not waited out
	assert.Less(t, elapsed, 400*time.Millisecond)
}

func TestOrchestrator_SearchAll_EmptyCatalogIsSuccess(t *testing.T) {
	o := NewOrchestrator(adaptersOf(
		&fakeAdapter{id: types.SourceAmazon, items: fakeItems(types.SourceAmazon, 3)},
		&fakeAdapter{id: types.SourceMyntra, items: nil},
	), nil, newTestPool(t), nil, nil)

	set := o.SearchAll(context.Background(), &types.Query{ID: "q1", Text: "running shoes"})

	// a source with nothing matching still settles as success, with an
	// empty list rather than a nil one
	empty := set[types.SourceMyntra]
	assert.Equal(t, types.StatusSuccess, empty.Status)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
	assert.Empty(t, empty.Error)

	// downstream ranking input is just the other source's items
	assert.Len(t, set.Succeeded(), 3)
}

func TestOrchestrator_SearchAll_SlowPincodeLookupDoesNotStallFanOut(t *testing.T) {
	lookup := &stalledLookup{delay: 300 * time.Millisecond}
	gate := deliverybiz.NewGate(lookup, &deliverybiz.Config{CacheTTL: time.Hour}, nil)
	defer gate.Close()

	o := NewOrchestrator(adaptersOf(
		&fakeAdapter{id: types.SourceAmazon, items: fakeItems(types.SourceAmazon, 1)},
		&fakeAdapter{id: types.SourceFlipkart, items: fakeItems(types.SourceFlipkart, 1)},
		&fakeAdapter{id: types.SourceMyntra, items: fakeItems(types.SourceMyntra, 1)},
		&fakeAdapter{id: types.SourceCroma, items: fakeItems(types.SourceCroma, 1)},
	), gate, newTestPool(t), &Config{SourceTimeout: 50 * time.Millisecond}, nil)

	start := time.Now()
	set := o.SearchAll(context.Background(), &types.Query{ID: "q1", Text: "tv", Pincode: "248001"})
	elapsed := time.Since(start)

	// the gate consult must never block on the postal dependency, so
	// total wall clock stays near the per-source deadline even with a
	// hung lookup upstream
	assert.Less(t, elapsed, 250*time.Millisecond)
	assert.Zero(t, lookup.calls)

	require.Len(t, set, 4)
	assert.Equal(t, types.StatusSuccess, set[types.SourceAmazon].Status)
	assert.Equal(t, types.StatusNotDeliverable, set[types.SourceCroma].Status)
}

func TestOrchestrator_SearchAll_GateSkipsFetch(t *testing.T) {
	gate := &denyGate{denied: map[types.SourceID]bool{types.SourceCroma: true}}
	o := NewOrchestrator(adaptersOf(
		&fakeAdapter{id: types.SourceAmazon, items: fakeItems(types.SourceAmazon, 1)},
		&fakeAdapter{id: types.SourceCroma, err: errors.New("should never be called")},
	), gate, newTestPool(t), nil, nil)

	set := o.SearchAll(context.Background(), &types.Query{ID: "q1", Text: "tv", Pincode: "248001"})

	assert.Equal(t, types.StatusSuccess, set[types.SourceAmazon].Status)
	assert.Equal(t, types.StatusNotDeliverable, set[types.SourceCroma].Status)
	assert.Empty(t, set[types.SourceCroma].Items)
	assert.Empty(t, set[types.SourceCroma].Error)
}

func TestOrchestrator_SearchAll_NoPincodeSkipsGate(t *testing.T) {
	gate := &denyGate{denied: map[types.SourceID]bool{types.SourceCroma: true}}
	o := NewOrchestrator(adaptersOf(
		&fakeAdapter{id: types.SourceCroma, items: fakeItems(types.SourceCroma, 1)},
	), gate, newTestPool(t), nil, nil)

	set := o.SearchAll(context.Background(), &types.Query{ID: "q1", Text: "tv"})

	assert.Zero(t, gate.calls)
	assert.Equal(t, types.StatusSuccess, set[types.SourceCroma].Status)
}

func TestOrchestrator_SearchAll_MixedOutcomes(t *testing.T) {
	gate := &denyGate{denied: map[types.SourceID]bool{types.SourceCroma: true}}
	o := NewOrchestrator(adaptersOf(
		&fakeAdapter{id: types.SourceAmazon, items: fakeItems(types.SourceAmazon, 2)},
		&fakeAdapter{id: types.SourceFlipkart, err: errors.New("boom")},
		&fakeAdapter{id: types.SourceMyntra, delay: time.Second},
		&fakeAdapter{id: types.SourceCroma, items: fakeItems(types.SourceCroma, 1)},
	), gate, newTestPool(t), &Config{SourceTimeout: 50 * time.Millisecond}, nil)

	set := o.SearchAll(context.Background(), &types.Query{ID: "q1", Text: "headphones", Pincode: "248001"})

	require.Len(t, set, 4)
	assert.Equal(t, types.StatusSuccess, set[types.SourceAmazon].Status)
	assert.Equal(t, types.StatusError, set[types.SourceFlipkart].Status)
	assert.Equal(t, types.StatusError, set[types.SourceMyntra].Status)
	assert.Equal(t, types.StatusNotDeliverable, set[types.SourceCroma].Status)

	// the aggregate view only carries successful items
	assert.Len(t, set.Succeeded(), 2)
}

func TestOrchestrator_SearchOne(t *testing.T) {
	o := NewOrchestrator(adaptersOf(
		&fakeAdapter{id: types.SourceAmazon, items: fakeItems(types.SourceAmazon, 2)},
		&fakeAdapter{id: types.SourceFlipkart, err: errors.New("boom")},
	), nil, newTestPool(t), nil, nil)
	ctx := context.Background()
	query := &types.Query{ID: "q1", Text: "headphones"}

	items, err := o.SearchOne(ctx, types.SourceAmazon, query)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = o.SearchOne(ctx, types.SourceFlipkart, query)
	assert.Equal(t, apperrors.ErrSourceFetchFailed, apperrors.ExtractCode(err))

	_, err = o.SearchOne(ctx, "ebay", query)
	assert.Equal(t, apperrors.ErrSourceUnknown, apperrors.ExtractCode(err))
}

func TestOrchestrator_SearchOne_Timeout(t *testing.T) {
	o := NewOrchestrator(adaptersOf(
		&fakeAdapter{id: types.SourceAmazon, delay: time.Second},
	), nil, newTestPool(t), &Config{SourceTimeout: 50 * time.Millisecond}, nil)

	_, err := o.SearchOne(context.Background(), types.SourceAmazon, &types.Query{ID: "q1", Text: "tv"})
	assert.Equal(t, apperrors.ErrSourceTimeout, apperrors.ExtractCode(err))
	// classification rides on the sentinel, not on message text
	assert.ErrorIs(t, err, types.ErrSourceTimeout)

	var srcErr *types.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "TIMEOUT", srcErr.Code)
}

func TestOrchestrator_SearchOne_GateApplies(t *testing.T) {
	gate := &denyGate{denied: map[types.SourceID]bool{types.SourceCroma: true}}
	o := NewOrchestrator(adaptersOf(
		&fakeAdapter{id: types.SourceCroma, items: fakeItems(types.SourceCroma, 1)},
	), gate, newTestPool(t), nil, nil)

	_, err := o.SearchOne(context.Background(), types.SourceCroma, &types.Query{ID: "q1", Text: "tv", Pincode: "248001"})
	assert.Equal(t, apperrors.ErrSourceNotDeliverable, apperrors.ExtractCode(err))
}

func TestOrchestrator_Sources(t *testing.T) {
	o := NewOrchestrator(adaptersOf(
		&fakeAdapter{id: types.SourceAmazon},
		&fakeAdapter{id: types.SourceFlipkart},
	), nil, newTestPool(t), nil, nil)

	sources := o.Sources()
	assert.ElementsMatch(t, []types.SourceID{types.SourceAmazon, types.SourceFlipkart}, sources)

	// callers get a copy, not the internal slice
	sources[0] = "mutated"
	assert.ElementsMatch(t, []types.SourceID{types.SourceAmazon, types.SourceFlipkart}, o.Sources())
}
