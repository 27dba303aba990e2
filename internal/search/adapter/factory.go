package adapter

import (
	"fmt"
	"sync"

	"github.com/shopscout/shopscout-backend/internal/search/types"
)

// Factory creates source adapter instances
type Factory struct {
	mu           sync.RWMutex
	constructors map[types.SourceID]func(*types.SourceConfig) (SourceAdapter, error)
}

// NewFactory creates a new adapter factory with built-in sources
func NewFactory() *Factory {
	f := &Factory{
		constructors: make(map[types.SourceID]func(*types.SourceConfig) (SourceAdapter, error)),
	}

	f.Register(types.SourceAmazon, NewAmazonAdapter)
	f.Register(types.SourceFlipkart, NewFlipkartAdapter)
	f.Register(types.SourceMyntra, NewMyntraAdapter)
	f.Register(types.SourceCroma, NewCromaAdapter)

	return f
}

// Register registers an adapter constructor
func (f *Factory) Register(id types.SourceID, constructor func(*types.SourceConfig) (SourceAdapter, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[id] = constructor
}

// Create creates an adapter instance from configuration
func (f *Factory) Create(config *types.SourceConfig) (SourceAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	f.mu.RLock()
	constructor, exists := f.constructors[config.ID]
	f.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", types.ErrSourceNotFound, config.ID)
	}

	return constructor(config)
}

// ListSources returns all registered source IDs
func (f *Factory) ListSources() []types.SourceID {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ids := make([]types.SourceID, 0, len(f.constructors))
	for id := range f.constructors {
		ids = append(ids, id)
	}
	return ids
}
