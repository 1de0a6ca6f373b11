package packing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const defaultProgressInterval = 2 * time.Second

// Packer is a greedy extreme-point 3D bin packer. A Packer holds no state
// between runs and may be shared by concurrent callers.
type Packer struct {
	opts             Options
	logger           *zap.Logger
	tracer           trace.Tracer
	progressInterval time.Duration
}

// Option configures a Packer.
type Option func(*Packer)

// WithLogger sets the logger used for progress and unplaced-item events.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Packer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTracer overrides the OpenTelemetry tracer, primarily for tests.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Packer) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithProgressInterval sets the minimum time between progress log lines.
func WithProgressInterval(d time.Duration) Option {
	return func(p *Packer) {
		if d > 0 {
			p.progressInterval = d
		}
	}
}

// New creates a Packer for the given options.
func New(opts Options, options ...Option) *Packer {
	p := &Packer{
		opts:             opts,
		logger:           zap.NewNop(),
		tracer:           otel.Tracer("load-planner/packing"),
		progressInterval: defaultProgressInterval,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Options returns the options the packer was built with.
func (p *Packer) Options() Options {
	return p.opts
}

// Pack assigns items to containers. Validation errors abort the run before
// anything is placed. Items that fit nowhere are reported through
// Outcome.Unplaced and never produce an error. The only other error is the
// context's, when ctx is done before the run completes.
func (p *Packer) Pack(ctx context.Context, containers []Container, items []Item) (*Outcome, error) {
	ctx, span := p.tracer.Start(ctx, "Packer.Pack")
	defer span.End()

	outcome, err := p.pack(ctx, containers, items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("packing.containers", len(containers)),
		attribute.Int("packing.items", len(items)),
		attribute.Int("packing.placed", len(items)-len(outcome.unplaced)),
		attribute.Int("packing.unplaced", len(outcome.unplaced)),
	)
	return outcome, nil
}

func (p *Packer) pack(ctx context.Context, containers []Container, items []Item) (*Outcome, error) {
	if err := p.opts.Validate(); err != nil {
		return nil, err
	}
	u := newUnits(p.opts.DecimalPrecision)

	bins, err := prepareContainers(containers, u)
	if err != nil {
		return nil, err
	}
	queue, err := prepareItems(items, u)
	if err != nil {
		return nil, err
	}
	if p.opts.Order == OrderBiggerFirst {
		sort.SliceStable(queue, func(i, j int) bool {
			return queue[i].volume > queue[j].volume
		})
	}

	progress := &rate.Sometimes{Interval: p.progressInterval}
	unplaced := make([]Item, 0)
	cursor := 0

	for n, it := range queue {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("packing aborted after %d of %d items: %w", n, len(queue), err)
		}
		progress.Do(func() {
			p.logger.Info("packing progress",
				zap.Int("processed", n),
				zap.Int("total", len(queue)),
				zap.Int("unplaced", len(unplaced)),
			)
		})

		order := p.searchOrder(len(bins), cursor)
		idx, cand, ok, err := p.search(ctx, bins, order, it)
		if err != nil {
			return nil, fmt.Errorf("packing aborted after %d of %d items: %w", n, len(queue), err)
		}
		if !ok {
			p.logger.Debug("item unplaced",
				zap.String("item_id", it.item.ID),
				zap.Float64("volume", it.item.Volume()),
				zap.Float64("weight", it.item.Weight),
			)
			unplaced = append(unplaced, it.item)
			continue
		}

		bins[idx].commit(it, cand)
		if p.opts.Distribute {
			cursor = (idx + 1) % len(bins)
		}
	}

	states := make([]ContainerState, len(bins))
	for i, b := range bins {
		states[i] = b.snapshot(u)
	}

	p.logger.Info("packing completed",
		zap.Int("containers", len(bins)),
		zap.Int("items", len(queue)),
		zap.Int("unplaced", len(unplaced)),
	)

	return &Outcome{containers: states, unplaced: unplaced, decimals: u.decimals}, nil
}

// searchOrder lists container indexes in the order they are offered an
// item, starting at cursor and wrapping around.
func (p *Packer) searchOrder(n, cursor int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = (cursor + i) % n
	}
	return order
}

// search returns the first container in order that can take the item. With
// more than one worker every container is evaluated concurrently; the winner
// is still chosen by position in order, so the outcome does not depend on
// scheduling.
func (p *Packer) search(ctx context.Context, bins []*bin, order []int, it preparedItem) (int, candidate, bool, error) {
	if p.opts.Workers < 2 || len(order) < 2 {
		for _, idx := range order {
			cand, ok, err := bins[idx].evaluate(ctx, it)
			if err != nil {
				return 0, candidate{}, false, err
			}
			if ok {
				return idx, cand, true, nil
			}
		}
		return 0, candidate{}, false, nil
	}

	type evaluation struct {
		cand candidate
		ok   bool
	}
	results := make([]evaluation, len(order))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for pos, idx := range order {
		g.Go(func() error {
			cand, ok, err := bins[idx].evaluate(gctx, it)
			if err != nil {
				return err
			}
			results[pos] = evaluation{cand: cand, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, candidate{}, false, err
	}

	for pos, res := range results {
		if res.ok {
			return order[pos], res.cand, true, nil
		}
	}
	return 0, candidate{}, false, nil
}
