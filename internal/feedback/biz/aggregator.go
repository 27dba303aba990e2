package biz

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopscout/shopscout-backend/internal/feedback/types"
	apperrors "github.com/shopscout/shopscout-backend/internal/pkg/errors"
	"go.uber.org/zap"
)

// EventStore is the append/query capability boundary for the feedback
// log. The in-memory store is the default; a redis-backed one can be
// swapped in without touching the aggregation logic.
type EventStore interface {
	Append(ctx context.Context, event *types.Event) error
	All(ctx context.Context) ([]*types.Event, error)
	ByItem(ctx context.Context, itemID string) ([]*types.Event, error)
	ByQuery(ctx context.Context, queryID string) ([]*types.Event, error)
}

// Aggregator ingests relevance signals and folds the full log into
// rolling analytics. Analytics are recomputed from scratch on every
// request: the log is append-only, so recomputation buys correctness
// for the cost of a linear pass.
type Aggregator struct {
	store  EventStore
	logger *zap.Logger
	now    func() time.Time // injectable clock for tests
}

// NewAggregator creates a feedback aggregator
func NewAggregator(store EventStore, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Submit validates and stores one event. Validation is strict and
// synchronous: a rejected event is never partially stored.
func (a *Aggregator) Submit(ctx context.Context, event *types.Event) error {
	if event == nil || event.ItemID == "" {
		return apperrors.New(apperrors.ErrFeedbackInvalidItem)
	}
	if event.QueryID == "" {
		return apperrors.New(apperrors.ErrFeedbackInvalidQuery)
	}
	if !event.Verdict.Valid() {
		return apperrors.New(apperrors.ErrFeedbackInvalidVerdict, fmt.Sprintf("got %q", event.Verdict))
	}
	if !event.Timestamp.IsZero() && event.Timestamp.Unix() < 0 {
		return apperrors.New(apperrors.ErrFeedbackInvalidTimestamp)
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = a.now()
	}

	if err := a.store.Append(ctx, event); err != nil {
		return fmt.Errorf("failed to store feedback event: %w", err)
	}

	a.logger.Debug("feedback event accepted",
		zap.String("event_id", event.ID),
		zap.String("item_id", event.ItemID),
		zap.String("verdict", string(event.Verdict)),
	)
	return nil
}

// ByItem returns the relevance history of one item
func (a *Aggregator) ByItem(ctx context.Context, itemID string) ([]*types.Event, error) {
	if itemID == "" {
		return nil, apperrors.New(apperrors.ErrFeedbackInvalidItem)
	}
	return a.store.ByItem(ctx, itemID)
}

// ByQuery returns the relevance history of one query
func (a *Aggregator) ByQuery(ctx context.Context, queryID string) ([]*types.Event, error) {
	if queryID == "" {
		return nil, apperrors.New(apperrors.ErrFeedbackInvalidQuery)
	}
	return a.store.ByQuery(ctx, queryID)
}

// Analytics recomputes the rolling view from the full event log
func (a *Aggregator) Analytics(ctx context.Context) (*types.Analytics, error) {
	events, err := a.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback log: %w", err)
	}

	now := a.now()
	analytics := &types.Analytics{
		Summary: summarize(events, now),
		ByItem:  breakdown(events, func(e *types.Event) string { return e.ItemID }),
		ByQuery: breakdown(events, func(e *types.Event) string { return e.QueryID }),
		Trend:   computeTrend(events, now),
	}
	return analytics, nil
}

func summarize(events []*types.Event, now time.Time) types.Summary {
	s := types.Summary{Total: len(events)}
	cutoff := now.Add(-24 * time.Hour)

	for _, e := range events {
		if e.Verdict == types.VerdictRelevant {
			s.Relevant++
		} else {
			s.NotRelevant++
		}
		if e.Timestamp.After(cutoff) {
			s.Last24hTotal++
			if e.Verdict == types.VerdictRelevant {
				s.Last24hRelevant++
			}
		}
	}

	s.RelevanceRate = rate(s.Relevant, s.Total)
	return s
}

func breakdown(events []*types.Event, keyOf func(*types.Event) string) []types.EntityBreakdown {
	counts := map[string]*types.EntityBreakdown{}
	order := []string{}

	for _, e := range events {
		key := keyOf(e)
		b, ok := counts[key]
		if !ok {
			b = &types.EntityBreakdown{ID: key}
			counts[key] = b
			order = append(order, key)
		}
		b.Total++
		if e.Verdict == types.VerdictRelevant {
			b.Relevant++
		}
	}

	out := make([]types.EntityBreakdown, 0, len(order))
	for _, key := range order {
		b := counts[key]
		b.RelevanceRate = rate(b.Relevant, b.Total)
		out = append(out, *b)
	}

	// busiest entities first, stable within a count
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}

// computeTrend partitions the log into the trailing 7 days and the 7
// days before that. A partition with no events has a defined 0% rate,
// so the trend is computable even from a cold start.
func computeTrend(events []*types.Event, now time.Time) types.Trend {
	weekAgo := now.Add(-7 * 24 * time.Hour)
	twoWeeksAgo := now.Add(-14 * 24 * time.Hour)

	var thisTotal, thisRelevant, lastTotal, lastRelevant int
	for _, e := range events {
		switch {
		case e.Timestamp.After(weekAgo):
			thisTotal++
			if e.Verdict == types.VerdictRelevant {
				thisRelevant++
			}
		case e.Timestamp.After(twoWeeksAgo):
			lastTotal++
			if e.Verdict == types.VerdictRelevant {
				lastRelevant++
			}
		}
	}

	t := types.Trend{
		ThisWeekRate: rate(thisRelevant, thisTotal),
		LastWeekRate: rate(lastRelevant, lastTotal),
	}

	switch {
	case t.ThisWeekRate > t.LastWeekRate:
		t.Direction = types.TrendImproving
	case t.ThisWeekRate < t.LastWeekRate:
		t.Direction = types.TrendDeclining
	default:
		t.Direction = types.TrendStable
	}
	t.Magnitude = round2(math.Abs(t.ThisWeekRate - t.LastWeekRate))

	return t
}

// rate is relevant/total as a percentage rounded to 2 decimals; an
// empty partition rates 0, not an error
func rate(relevant, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(relevant) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
