package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/shopscout/shopscout-backend/internal/pkg/errors"
	"github.com/shopscout/shopscout-backend/internal/pkg/workerpool"
	"github.com/shopscout/shopscout-backend/internal/search/adapter"
	"github.com/shopscout/shopscout-backend/internal/search/types"
	"go.uber.org/zap"
)

// DeliveryGate is the orchestrator's view of delivery serviceability
type DeliveryGate interface {
	IsDeliverable(ctx context.Context, pincode string, source types.SourceID) bool
}

// Config holds orchestration settings
type Config struct {
	SourceTimeout time.Duration `mapstructure:"source_timeout"` // per-source fetch deadline, default 10s
}

// Orchestrator fans one query out to every configured source in
// parallel, races each fetch against its own deadline, and aggregates
// the per-source outcomes. One source failing or timing out never
// affects another; there is no additional global deadline, so a
// SearchAll call is bounded by the slowest source's own deadline.
type Orchestrator struct {
	adapters map[types.SourceID]adapter.SourceAdapter
	sources  []types.SourceID
	gate     DeliveryGate
	pool     *workerpool.Pool
	timeout  time.Duration
	logger   *zap.Logger
}

// NewOrchestrator creates a search orchestrator over the given adapters
func NewOrchestrator(
	adapters []adapter.SourceAdapter,
	gate DeliveryGate,
	pool *workerpool.Pool,
	cfg *Config,
	logger *zap.Logger,
) *Orchestrator {
	timeout := 10 * time.Second
	if cfg != nil && cfg.SourceTimeout > 0 {
		timeout = cfg.SourceTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	byID := make(map[types.SourceID]adapter.SourceAdapter, len(adapters))
	sources := make([]types.SourceID, 0, len(adapters))
	for _, ad := range adapters {
		byID[ad.ID()] = ad
		sources = append(sources, ad.ID())
	}

	return &Orchestrator{
		adapters: byID,
		sources:  sources,
		gate:     gate,
		pool:     pool,
		timeout:  timeout,
		logger:   logger,
	}
}

// Sources returns the configured source set
func (o *Orchestrator) Sources() []types.SourceID {
	out := make([]types.SourceID, len(o.sources))
	copy(out, o.sources)
	return out
}

type outcome struct {
	source types.SourceID
	result *types.SourceResult
}

// SearchAll fans the query out to every source and returns once every
// slot has settled. The result set always contains exactly one entry
// per configured source; sources the gate rules out settle immediately
// as not_deliverable without a fetch.
func (o *Orchestrator) SearchAll(ctx context.Context, query *types.Query) types.SearchResultSet {
	set := types.NewSearchResultSet(o.sources)

	outcomes := make(chan outcome, len(o.sources))
	launched := 0

	for _, source := range o.sources {
		ad := o.adapters[source]

		if o.gate != nil && query.Pincode != "" && !o.gate.IsDeliverable(ctx, query.Pincode, source) {
			set[source] = &types.SourceResult{
				Status: types.StatusNotDeliverable,
				Items:  []*types.Item{},
			}
			continue
		}

		launched++
		src := source
		go func() {
			result, _ := o.fetchOne(ctx, ad, query)
			outcomes <- outcome{source: src, result: result}
		}()
	}

	for i := 0; i < launched; i++ {
		out := <-outcomes
		set[out.source] = out.result
	}

	return set
}

// SearchOne fetches from a single source, applying the same delivery
// gating and per-source deadline as SearchAll. Unlike SearchAll, the
// failure is the caller's to see.
func (o *Orchestrator) SearchOne(ctx context.Context, source types.SourceID, query *types.Query) ([]*types.Item, error) {
	ad, ok := o.adapters[source]
	if !ok {
		return nil, apperrors.New(apperrors.ErrSourceUnknown, string(source))
	}

	if o.gate != nil && query.Pincode != "" && !o.gate.IsDeliverable(ctx, query.Pincode, source) {
		return nil, apperrors.New(apperrors.ErrSourceNotDeliverable, string(source))
	}

	result, cause := o.fetchOne(ctx, ad, query)
	if result.Status == types.StatusSuccess {
		return result.Items, nil
	}

	srcErr := &types.SourceError{Source: source, Code: "FETCH_FAILED", Message: result.Error, Err: cause}
	code := apperrors.ErrSourceFetchFailed
	if errors.Is(cause, types.ErrSourceTimeout) {
		srcErr.Code = "TIMEOUT"
		code = apperrors.ErrSourceTimeout
	}
	return nil, apperrors.Wrap(srcErr, code, result.Error)
}

// fetchOne races one adapter fetch against the per-source deadline and
// returns the settled slot plus the underlying cause of a failure. The
// cause wraps types.ErrSourceTimeout when the deadline won the race, so
// callers never classify by message text. The fetch runs on the worker
// pool; when the deadline wins, the in-flight call is abandoned, not
// forcibly stopped: its context is cancelled so a well-behaved adapter
// returns early, but nobody waits for it and its late result is
// discarded.
func (o *Orchestrator) fetchOne(ctx context.Context, ad adapter.SourceAdapter, query *types.Query) (*types.SourceResult, error) {
	fetchCtx, cancel := context.WithCancel(ctx)

	resultCh, err := o.pool.SubmitWithResult(func() (interface{}, error) {
		return ad.Fetch(fetchCtx, query)
	})
	if err != nil {
		cancel()
		o.logger.Error("failed to schedule source fetch",
			zap.String("source", string(ad.ID())),
			zap.Error(err),
		)
		return errorResult(fmt.Sprintf("could not schedule fetch: %v", err)), err
	}

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		cancel()
		if res.Error != nil {
			o.logger.Warn("source fetch failed",
				zap.String("source", string(ad.ID())),
				zap.String("query_id", query.ID),
				zap.Error(res.Error),
			)
			return errorResult(res.Error.Error()), res.Error
		}

		items, _ := res.Data.([]*types.Item)
		if items == nil {
			items = []*types.Item{}
		}
		return &types.SourceResult{
			Status: types.StatusSuccess,
			Items:  items,
		}, nil

	case <-timer.C:
		cancel()
		o.logger.Warn("source fetch timed out",
			zap.String("source", string(ad.ID())),
			zap.String("query_id", query.ID),
			zap.Duration("timeout", o.timeout),
		)
		cause := fmt.Errorf("%w after %s", types.ErrSourceTimeout, o.timeout)
		return errorResult(timeoutMessage(ad.ID(), o.timeout)), cause
	}
}

func errorResult(msg string) *types.SourceResult {
	return &types.SourceResult{
		Status: types.StatusError,
		Items:  []*types.Item{},
		Error:  msg,
	}
}

func timeoutMessage(source types.SourceID, timeout time.Duration) string {
	return fmt.Sprintf("source %s timed out after %s", source, timeout)
}
