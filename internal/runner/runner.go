// Package runner performs one scheduled posting run for a platform: check
// the schedule, fetch candidates, pick one, compose, publish, and record
// any failure.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ppiankov/blogcast/internal/compose"
	"github.com/ppiankov/blogcast/internal/publish"
	"github.com/ppiankov/blogcast/internal/redact"
	"github.com/ppiankov/blogcast/internal/rotation"
	"github.com/ppiankov/blogcast/internal/schedule"
	"github.com/ppiankov/blogcast/internal/source"
	"github.com/ppiankov/blogcast/internal/store"
)

var (
	ErrSourceFetch = errors.New("source fetch failed")
	ErrTracker     = errors.New("tracker access failed")
	ErrPublish     = errors.New("publish failed")
)

// Status is the outcome of a run.
type Status string

const (
	StatusPosted  Status = "posted"
	StatusDryRun  Status = "dry_run"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// FailureLog records failed runs.
type FailureLog interface {
	LogFailure(ctx context.Context, platform, errText, message string) (store.Failure, error)
}

// Options wires a Runner. Publisher may be nil when DryRun is set.
type Options struct {
	Platform   string
	Source     source.Source
	Selector   *rotation.Selector
	Composer   compose.Composer
	Publisher  publish.Publisher
	Guard      *schedule.Guard
	Failures   FailureLog
	Redactor   *redact.Redactor
	Exclusions rotation.Exclusions
	DryRun     bool
	Out        io.Writer
	Now        func() time.Time
}

// Runner executes posting runs for one platform.
type Runner struct {
	opts Options
}

// Result describes a finished run.
type Result struct {
	Platform string
	Status   Status
	Post     source.Post
	Message  compose.Message
	Response *publish.Response
}

func New(opts Options) (*Runner, error) {
	if opts.Platform == "" {
		return nil, errors.New("runner: platform is required")
	}
	if opts.Source == nil {
		return nil, errors.New("runner: source is required")
	}
	if opts.Selector == nil {
		return nil, errors.New("runner: selector is required")
	}
	if opts.Composer == nil {
		return nil, errors.New("runner: composer is required")
	}
	if opts.Publisher == nil && !opts.DryRun {
		return nil, errors.New("runner: publisher is required unless dry run")
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{opts: opts}, nil
}

// Run performs one run. With force the schedule guard is bypassed. A run
// outside every slot returns StatusSkipped and no error. Any failure is
// appended to the failure log on a best-effort basis and returned.
func (r *Runner) Run(ctx context.Context, force bool) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	res := Result{Platform: r.opts.Platform}

	if !force && r.opts.Guard != nil && !r.opts.Guard.Allow(r.opts.Now()) {
		res.Status = StatusSkipped
		fmt.Fprintf(r.opts.Out, "%s: outside posting slots, skipping\n", r.opts.Platform)
		return res, nil
	}

	err := r.run(ctx, &res)
	if err == nil {
		return res, nil
	}

	res.Status = StatusFailed
	status := FailureStatus(r.opts.Platform, err)
	fmt.Fprintln(r.opts.Out, status)
	r.recordFailure(ctx, status, res.Message.Text)
	return res, err
}

func (r *Runner) run(ctx context.Context, res *Result) error {
	candidates, err := r.opts.Source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSourceFetch, r.opts.Source.Name(), err)
	}

	post, err := r.opts.Selector.Select(ctx, r.opts.Platform, candidates, r.opts.Exclusions)
	if err != nil {
		if errors.Is(err, rotation.ErrNoCandidates) {
			return fmt.Errorf("select from %d candidates: %w", len(candidates), err)
		}
		return fmt.Errorf("%w: %w", ErrTracker, err)
	}
	res.Post = post
	fmt.Fprintf(r.opts.Out, "%s: selected post %s %q\n", r.opts.Platform, post.ID, post.Title)

	res.Message = r.opts.Composer.Compose(post)

	if r.opts.DryRun {
		res.Status = StatusDryRun
		fmt.Fprintf(r.opts.Out, "%s: dry run, not publishing:\n%s\n", r.opts.Platform, res.Message.Text)
		return nil
	}

	resp, err := r.opts.Publisher.Publish(ctx, res.Message)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	res.Response = resp
	res.Status = StatusPosted
	fmt.Fprintf(r.opts.Out, "%s: published post %s as %s\n", r.opts.Platform, post.ID, resp.ID)
	return nil
}

func (r *Runner) recordFailure(ctx context.Context, status, message string) {
	if r.opts.Failures == nil {
		return
	}
	// Record even when the run was cancelled.
	ctx = context.WithoutCancel(ctx)
	_, err := r.opts.Failures.LogFailure(ctx, r.opts.Platform, r.opts.Redactor.Apply(status), r.opts.Redactor.Apply(message))
	if err != nil {
		fmt.Fprintf(r.opts.Out, "warning: record failure: %v\n", err)
	}
}

// FailureStatus renders err as the one-line status stored in the failure log.
func FailureStatus(platform string, err error) string {
	kind := "run failed"
	switch {
	case errors.Is(err, ErrSourceFetch):
		kind = "source fetch failed"
	case errors.Is(err, ErrTracker):
		kind = "tracker access failed"
	case errors.Is(err, rotation.ErrNoCandidates):
		kind = "no candidates"
	case errors.Is(err, publish.ErrAuth):
		kind = "publish authentication failed"
	case errors.Is(err, ErrPublish):
		kind = "publish failed"
	}
	return fmt.Sprintf("%s: %s: %v", platform, kind, err)
}
