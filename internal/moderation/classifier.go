package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultToxicityThreshold = 0.9

// Prediction is one category score for one input text.
type Prediction struct {
	Label       string
	Probability float64
}

// Model scores texts across the toxicity categories it supports. The result
// holds one prediction slice per input text.
type Model interface {
	Classify(ctx context.Context, texts []string) ([][]Prediction, error)
}

// ModelLoader builds a Model. It is expensive and called at most once per
// successful load.
type ModelLoader func(ctx context.Context) (Model, error)

// ToxicityClassifier is what the submission pipeline depends on.
type ToxicityClassifier interface {
	IsToxic(ctx context.Context, text string) bool
}

// Classifier lazily loads one shared Model and fails open: any load or
// inference error is logged and the text is treated as not toxic.
type Classifier struct {
	load      ModelLoader
	threshold float64
	logger    *zap.Logger

	group singleflight.Group
	mu    sync.RWMutex
	model Model
}

func NewClassifier(load ModelLoader, threshold float64, logger *zap.Logger) *Classifier {
	if threshold <= 0 {
		threshold = DefaultToxicityThreshold
	}
	return &Classifier{
		load:      load,
		threshold: threshold,
		logger:    logger,
	}
}

// Model returns the loaded model, loading it if needed. Concurrent callers
// during a load wait on the same in-flight load. A failed load is not cached.
func (c *Classifier) Model(ctx context.Context) (Model, error) {
	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()
	if model != nil {
		return model, nil
	}

	v, err, _ := c.group.Do("model", func() (interface{}, error) {
		c.mu.RLock()
		loaded := c.model
		c.mu.RUnlock()
		if loaded != nil {
			return loaded, nil
		}

		m, err := c.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, errors.New("model loader returned no model")
		}
		c.mu.Lock()
		c.model = m
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load toxicity model: %w", err)
	}
	return v.(Model), nil
}

func (c *Classifier) IsToxic(ctx context.Context, text string) bool {
	toxic, err := c.classify(ctx, text)
	if err != nil {
		c.logger.Error("Error checking toxicity, treating text as non-toxic", zap.Error(err))
		return false
	}
	return toxic
}

func (c *Classifier) classify(ctx context.Context, text string) (bool, error) {
	model, err := c.Model(ctx)
	if err != nil {
		return false, err
	}

	results, err := model.Classify(ctx, []string{text})
	if err != nil {
		return false, fmt.Errorf("classify: %w", err)
	}
	if len(results) == 0 {
		return false, errors.New("classify: empty result")
	}

	for _, p := range results[0] {
		if p.Probability > c.threshold {
			c.logger.Info("Text flagged as toxic",
				zap.String("label", p.Label),
				zap.Float64("probability", p.Probability))
			return true, nil
		}
	}
	return false, nil
}
