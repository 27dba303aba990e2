package biz

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	apperrors "github.com/shopscout/shopscout-backend/internal/pkg/errors"
	"github.com/shopscout/shopscout-backend/internal/search/types"
	"go.uber.org/zap"
)

// pincodeRe is the fixed format rule: Indian PIN codes are six digits
// and never start with zero.
var pincodeRe = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// metroPrefixes marks the major-city PIN zones. Detail composition is
// keyed on source identity and on whether a code falls in one of these.
var metroPrefixes = []string{
	"110", // Delhi
	"400", // Mumbai
	"560", // Bengaluru
	"600", // Chennai
	"700", // Kolkata
	"500", // Hyderabad
	"411", // Pune
	"380", // Ahmedabad
}

// PincodeInfo is the outcome of one postal lookup
type PincodeInfo struct {
	Pincode  string
	Known    bool
	City     string
	State    string
	Locality string
}

// DeliveryDetail is what a source can promise for one location
type DeliveryDetail struct {
	Deliverable  bool            `json:"deliverable"`
	City         string          `json:"city,omitempty"`
	State        string          `json:"state,omitempty"`
	ETA          string          `json:"eta,omitempty"`
	ETADays      int             `json:"eta_days,omitempty"`
	Cost         decimal.Decimal `json:"cost"`
	CODAvailable bool            `json:"cod_available"`
	Options      []string        `json:"options,omitempty"`
	Restrictions []string        `json:"restrictions,omitempty"`
}

// LookupClient resolves PIN codes via an external dependency
type LookupClient interface {
	Lookup(ctx context.Context, pincode string) (*PincodeInfo, error)
}

// Config holds delivery gate settings
type Config struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"` // default 24h
}

type cacheEntry struct {
	info  *PincodeInfo
	timer *time.Timer
}

// Gate answers whether a source can deliver to a location. Lookups are
// cached per PIN code; each entry carries its own expiry timer instead
// of a background sweep. A failed lookup degrades to a permissive
// fallback, so availability checking never hard-blocks a search.
type Gate struct {
	lookup LookupClient
	ttl    time.Duration
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]*cacheEntry
}

// NewGate creates a delivery gate
func NewGate(lookup LookupClient, cfg *Config, logger *zap.Logger) *Gate {
	ttl := 24 * time.Hour
	if cfg != nil && cfg.CacheTTL > 0 {
		ttl = cfg.CacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Gate{
		lookup: lookup,
		ttl:    ttl,
		logger: logger,
		cache:  make(map[string]*cacheEntry),
	}
}

// ValidatePincode checks the fixed format rule
func ValidatePincode(pincode string) bool {
	return pincodeRe.MatchString(pincode)
}

// IsMetro reports whether a PIN code belongs to a major-city zone
func IsMetro(pincode string) bool {
	for _, prefix := range metroPrefixes {
		if strings.HasPrefix(pincode, prefix) {
			return true
		}
	}
	return false
}

// IsDeliverable reports whether a source serves a location. It is a
// pure predicate over the code format and the per-source rule and never
// touches the external lookup, so gating a search fan-out cannot block
// on the postal dependency. A malformed code is simply not deliverable;
// it is never an error here.
func (g *Gate) IsDeliverable(_ context.Context, pincode string, source types.SourceID) bool {
	if !ValidatePincode(pincode) {
		return false
	}
	return sourceServes(source, pincode)
}

// GetDeliveryInfo composes the delivery promise for (location, source).
// The code must pass format validation before any lookup is attempted.
func (g *Gate) GetDeliveryInfo(ctx context.Context, pincode string, source types.SourceID) (*DeliveryDetail, error) {
	if !ValidatePincode(pincode) {
		return nil, apperrors.New(apperrors.ErrInvalidPincode, fmt.Sprintf("pincode %q must be 6 digits", pincode))
	}

	info := g.resolve(ctx, pincode)

	detail := composeDetail(source, pincode, info)
	return detail, nil
}

// resolve returns the cached PincodeInfo for a valid-format code,
// consulting the external lookup on a miss. Lookup failures degrade to
// a permissive unknown-locality result and are not cached, so the next
// caller retries the dependency.
func (g *Gate) resolve(ctx context.Context, pincode string) *PincodeInfo {
	g.mu.Lock()
	if entry, ok := g.cache[pincode]; ok {
		info := entry.info
		g.mu.Unlock()
		return info
	}
	g.mu.Unlock()

	info, err := g.lookup.Lookup(ctx, pincode)
	if err != nil {
		g.logger.Warn("pincode lookup failed, using permissive fallback",
			zap.String("pincode", pincode),
			zap.Error(err),
		)
		return &PincodeInfo{Pincode: pincode, Known: false}
	}

	g.store(pincode, info)
	return info
}

// store caches info under pincode with a self-expiring timer. A
// concurrent refresh of the same key stops the old timer under the
// same lock that swaps the value, so expiry cannot race the refresh.
func (g *Gate) store(pincode string, info *PincodeInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if old, ok := g.cache[pincode]; ok {
		old.timer.Stop()
	}

	entry := &cacheEntry{info: info}
	entry.timer = time.AfterFunc(g.ttl, func() {
		g.mu.Lock()
		if current, ok := g.cache[pincode]; ok && current == entry {
			delete(g.cache, pincode)
		}
		g.mu.Unlock()
	})
	g.cache[pincode] = entry
}

// CacheSize returns the number of live cache entries
func (g *Gate) CacheSize() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.cache)
}

// Close stops all pending expiry timers
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for pincode, entry := range g.cache {
		entry.timer.Stop()
		delete(g.cache, pincode)
	}
}

// sourceServes is the serviceability rule per source. Croma ships
// large electronics through its own metro logistics network; the
// marketplace sources serve every valid PIN code.
func sourceServes(source types.SourceID, pincode string) bool {
	switch source {
	case types.SourceCroma:
		return IsMetro(pincode)
	default:
		return true
	}
}

// composeDetail derives the delivery promise as a deterministic
// function of (source, metro-or-not). No randomness: repeated calls for
// the same pair always agree.
func composeDetail(source types.SourceID, pincode string, info *PincodeInfo) *DeliveryDetail {
	metro := IsMetro(pincode)

	detail := &DeliveryDetail{
		Deliverable: sourceServes(source, pincode),
		City:        info.City,
		State:       info.State,
	}
	if !detail.Deliverable {
		detail.Restrictions = []string{"serviceable only in metro PIN zones"}
		return detail
	}

	var days int
	var cost int64
	switch source {
	case types.SourceAmazon:
		days, cost = pick(metro, 2, 4, 0, 40)
		detail.Options = []string{"standard", "one-day"}
	case types.SourceFlipkart:
		days, cost = pick(metro, 3, 5, 0, 40)
		detail.Options = []string{"standard"}
	case types.SourceMyntra:
		days, cost = pick(metro, 3, 6, 0, 0)
		detail.Options = []string{"standard", "try-and-buy"}
	case types.SourceCroma:
		days, cost = pick(metro, 2, 2, 0, 0)
		detail.Options = []string{"standard", "store-pickup"}
	default:
		days, cost = pick(metro, 4, 7, 40, 80)
	}

	detail.ETADays = days
	detail.ETA = fmt.Sprintf("%d-%d days", days, days+1)
	detail.Cost = decimal.NewFromInt(cost)
	detail.CODAvailable = metro

	return detail
}

func pick(metro bool, metroDays, otherDays int, metroCost, otherCost int64) (int, int64) {
	if metro {
		return metroDays, metroCost
	}
	return otherDays, otherCost
}
