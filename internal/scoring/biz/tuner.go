package biz

import (
	feedbacktypes "github.com/shopscout/shopscout-backend/internal/feedback/types"
)

// Tuner adjusts scoring weights from feedback analytics. The concrete
// adjustment policy is deliberately pluggable: swap the strategy
// without touching the engine or the aggregator.
type Tuner interface {
	Tune(current Weights, analytics *feedbacktypes.Analytics) Weights
}

// ConservativeTuner nudges the weights toward their mean when the
// relevance trend is declining, flattening whatever emphasis is
// currently failing shoppers. It never moves more than ten percent of
// the distance per call, and an improving or stable trend leaves the
// weights untouched.
type ConservativeTuner struct{}

// NewConservativeTuner creates the default tuner
func NewConservativeTuner() *ConservativeTuner {
	return &ConservativeTuner{}
}

// Tune applies the adjustment policy
func (t *ConservativeTuner) Tune(current Weights, analytics *feedbacktypes.Analytics) Weights {
	if analytics == nil || analytics.Trend.Direction != feedbacktypes.TrendDeclining {
		return current
	}
	if analytics.Summary.Total < 20 {
		// too little signal to act on
		return current
	}

	mean := current.sum() / 4
	const step = 0.1

	return Weights{
		BudgetFit:     current.BudgetFit + (mean-current.BudgetFit)*step,
		FeatureMatch:  current.FeatureMatch + (mean-current.FeatureMatch)*step,
		DeliverySpeed: current.DeliverySpeed + (mean-current.DeliverySpeed)*step,
		Trust:         current.Trust + (mean-current.Trust)*step,
	}
}
