// Package merge blends several histories into one by integer weights.
package merge

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/rcliao/libime-history-merge/internal/model"
)

// ErrLogic is matched by every precondition and invariant failure.
var ErrLogic = errors.New("logic error")

var (
	ErrWeightCountMismatch = fmt.Errorf("%w: weight count mismatch", ErrLogic)
	ErrZeroWeight          = fmt.Errorf("%w: zero weight not allowed", ErrLogic)
	ErrNegativeWeight      = fmt.Errorf("%w: negative weight not allowed", ErrLogic)
)

// InvariantError is the panic value raised when the mixed output does not
// hold exactly min(target, total) sentences.
type InvariantError struct {
	Want int
	Got  int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("merge: bad length of mixed sentences (expected %d, got %d)", e.Want, e.Got)
}

func (e *InvariantError) Is(target error) bool { return target == ErrLogic }

// Option configures Merge.
type Option func(*options)

type options struct {
	logger logrus.FieldLogger
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Merge interleaves the flattened sentences of histories in proportion to
// weights and re-buckets them into the three libime pools. An empty weights
// slice gives every history weight 1. Sources with equal weight keep their
// input order. The inputs are never modified.
func Merge(histories []*model.History, weights []int, opts ...Option) (*model.History, error) {
	o := options{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	if len(weights) == 0 {
		o.logger.Info("using identical weights for each history")
		weights = make([]int, len(histories))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(histories) {
		return nil, fmt.Errorf("%w: %d weights for %d histories", ErrWeightCountMismatch, len(weights), len(histories))
	}
	for i, w := range weights {
		if w == 0 {
			return nil, fmt.Errorf("%w (history %d)", ErrZeroWeight, i)
		}
		if w < 0 {
			return nil, fmt.Errorf("%w (history %d has weight %d)", ErrNegativeWeight, i, w)
		}
	}

	sources := make([]*source, len(histories))
	for i, h := range histories {
		sources[i] = &source{
			index:     i,
			weight:    weights[i],
			sentences: h.Sentences(),
		}
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].weight > sources[j].weight
	})

	mixed := mix(model.TotalCapacity(), sources, o.logger)
	pools := split(mixed, model.PoolCapacities)
	for i, p := range pools {
		o.logger.WithFields(logrus.Fields{
			"pool":     i,
			"size":     len(p),
			"capacity": model.PoolCapacities[i],
		}).Debug("filled pool")
	}

	return model.NewHistory(pools), nil
}

// source is one input history being consumed front to back.
type source struct {
	index     int
	weight    int
	sentences []model.Sentence
}

func (s *source) exhausted() bool { return len(s.sentences) == 0 }

func (s *source) take(n int) []model.Sentence {
	n = min(n, len(s.sentences))
	out := s.sentences[:n]
	s.sentences = s.sentences[n:]
	return out
}

func gcd(a, b int) int {
	if b == 0 {
		return a
	}
	return gcd(b, a%b)
}

// partition reduces the weights of sorted sources to their smallest integer
// ratio.
func partition(sources []*source) []int {
	g := 0
	for _, s := range sources {
		g = gcd(s.weight, g)
	}
	parts := make([]int, len(sources))
	for i, s := range sources {
		parts[i] = s.weight / g
	}
	return parts
}

// mix draws sentences from sources sorted by descending weight until target
// is reached or every source is exhausted. Each cycle first draws
// part%minPart from every source, then part/minPart from every source
// minPart times, so a full cycle consumes exactly part sentences per
// source.
func mix(target int, sources []*source, logger logrus.FieldLogger) []model.Sentence {
	total := 0
	for _, s := range sources {
		total += len(s.sentences)
	}
	want := min(target, total)
	out := make([]model.Sentence, 0, want)

	draw := func(s *source, n int) {
		if s.exhausted() || len(out) == target {
			return
		}
		got := s.take(min(n, target-len(out)))
		logger.WithFields(logrus.Fields{
			"source": s.index,
			"drawn":  len(got),
		}).Trace("drew sentences")
		out = append(out, got...)
	}

	switch len(sources) {
	case 0:
	case 1:
		draw(sources[0], target)
	default:
		parts := partition(sources)
		minPart := parts[0]
		for _, p := range parts {
			minPart = min(minPart, p)
		}

		for len(out) < target && !allExhausted(sources) {
			for i, s := range sources {
				draw(s, parts[i]%minPart)
			}
			for range minPart {
				for i, s := range sources {
					draw(s, parts[i]/minPart)
				}
			}
		}
	}

	if len(out) != want {
		panic(&InvariantError{Want: want, Got: len(out)})
	}
	return out
}

func allExhausted(sources []*source) bool {
	for _, s := range sources {
		if !s.exhausted() {
			return false
		}
	}
	return true
}

// split fills the pools in order, each up to its capacity.
func split(sentences []model.Sentence, capacities [model.PoolCount]int) [model.PoolCount]model.Pool {
	var pools [model.PoolCount]model.Pool
	for i, c := range capacities {
		n := min(c, len(sentences))
		if n > 0 {
			pools[i] = model.Pool(sentences[:n:n])
		}
		sentences = sentences[n:]
	}
	return pools
}
