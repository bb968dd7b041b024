package pipeline

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Stage defines the interface for a pipeline stage.
// Each stage processes input from an input channel and sends results to an output channel.
type Stage interface {
	Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error
}

// Pipeline manages a sequence of stages that process data in a chain.
type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

// New creates a new Pipeline instance with the given logger.
func New(logger *zap.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
	}
}

// AddStage adds a stage to the pipeline's sequence.
func (p *Pipeline) AddStage(stage Stage) {
	p.stages = append(p.stages, stage)
}

// Run executes the pipeline with the given input channel.
//
// The pipeline chains stages such that each stage's output becomes the next
// stage's input. The first stage uses the provided input channel, and
// subsequent stages use channels created internally. Errors from individual
// stages are combined and returned once every stage has finished.
func (p *Pipeline) Run(ctx context.Context, input <-chan interface{}) error {
	if len(p.stages) == 0 {
		p.logger.Warn("no stages in pipeline")
		return nil
	}

	// A failed stage cancels the rest of the pipeline so downstream stages
	// do not render results for a run that already broke.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	channels := make([]chan interface{}, len(p.stages))
	for i := range channels {
		channels[i] = make(chan interface{}, 50)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		combined error
	)
	wg.Add(len(p.stages))

	for i, stage := range p.stages {
		inChan := input
		if i > 0 {
			inChan = channels[i-1]
		}
		outChan := channels[i]

		go func(stage Stage, in <-chan interface{}, out chan<- interface{}, idx int) {
			defer wg.Done()
			defer close(out)
			if err := stage.Execute(runCtx, in, out, p.logger); err != nil {
				p.logger.Error("stage execution failed",
					zap.Int("stage", idx),
					zap.Error(err))
				mu.Lock()
				combined = multierr.Append(combined, err)
				mu.Unlock()
				cancel()
			}
			// Drain leftover input so upstream stages never block on a
			// stage that bailed out early.
			for range in {
			}
		}(stage, inChan, outChan, i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if combined != nil {
			return combined
		}
		p.logger.Info("pipeline completed successfully")
		return nil
	case <-ctx.Done():
		p.logger.Info("pipeline canceled", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}
