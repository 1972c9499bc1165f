// Package rotation picks the next post to publish for a platform so that
// every eligible post is used once before any repeats.
package rotation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/ppiankov/blogcast/internal/source"
	"github.com/samber/lo"
)

// ErrNoCandidates means no post is eligible even after a tracker reset.
var ErrNoCandidates = errors.New("no candidate posts available")

// Tracker records which posts were already selected, one partition per platform.
type Tracker interface {
	ListPosted(ctx context.Context, platform string) ([]string, error)
	AddPosted(ctx context.Context, platform, postID string) error
	ClearPosted(ctx context.Context, platform string) (int64, error)
}

// RandSource picks an index in [0, n).
type RandSource interface {
	IntN(n int) int
}

// NewRand returns a RandSource seeded from seed. Tests use a fixed seed.
func NewRand(seed uint64) RandSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int { return rand.IntN(n) }

// Exclusions permanently remove posts from rotation.
type Exclusions struct {
	IDs   []string // never selectable
	Years []int    // posts published in these UTC years are dropped
}

// Selector chooses one unused post per call and maintains the tracker.
type Selector struct {
	tracker Tracker
	rnd     RandSource
}

// NewSelector creates a selector. A nil rnd uses the global generator.
func NewSelector(tracker Tracker, rnd RandSource) *Selector {
	if rnd == nil {
		rnd = defaultRand{}
	}
	return &Selector{tracker: tracker, rnd: rnd}
}

// Eligible returns the candidates not excluded by year, in input order.
func Eligible(candidates []source.Post, years []int) []source.Post {
	return lo.Filter(candidates, func(p source.Post, _ int) bool {
		return !lo.Contains(years, p.Year())
	})
}

// Select picks a post for platform. When every eligible post has been used
// the partition is cleared and the cycle starts over. Picking the last
// unused post also clears the partition, so the following call begins a
// fresh cycle instead of waiting for exhaustion.
func (s *Selector) Select(ctx context.Context, platform string, candidates []source.Post, ex Exclusions) (source.Post, error) {
	if s == nil || s.tracker == nil {
		return source.Post{}, errors.New("selector is not initialized")
	}

	eligible := Eligible(candidates, ex.Years)
	byID := lo.SliceToMap(eligible, func(p source.Post) (string, source.Post) {
		return p.ID, p
	})
	ids := lo.Uniq(lo.Map(eligible, func(p source.Post, _ int) string { return p.ID }))

	used, err := s.tracker.ListPosted(ctx, platform)
	if err != nil {
		return source.Post{}, fmt.Errorf("list posted: %w", err)
	}

	if len(used) > len(ids) {
		if _, err := s.tracker.ClearPosted(ctx, platform); err != nil {
			return source.Post{}, fmt.Errorf("clear oversized partition: %w", err)
		}
		used = nil
	}

	excluded := lo.Union(used, ex.IDs)
	available := lo.Without(ids, excluded...)
	if len(available) == 0 {
		if _, err := s.tracker.ClearPosted(ctx, platform); err != nil {
			return source.Post{}, fmt.Errorf("reset partition: %w", err)
		}
		available = lo.Without(ids, ex.IDs...)
	}
	if len(available) == 0 {
		return source.Post{}, ErrNoCandidates
	}

	pick := available[s.rnd.IntN(len(available))]

	if len(available) == 1 {
		if _, err := s.tracker.ClearPosted(ctx, platform); err != nil {
			return source.Post{}, fmt.Errorf("end cycle: %w", err)
		}
	} else if err := s.tracker.AddPosted(ctx, platform, pick); err != nil {
		return source.Post{}, fmt.Errorf("record selection: %w", err)
	}

	return byID[pick], nil
}
