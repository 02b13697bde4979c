// Package katex is the render gateway: it validates and escapes render
// requests, applies the width policy, and drives keyed render jobs
// through the coalescer against the hosted engine.
package katex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"texd/internal/cache"
	"texd/internal/coalesce"
	"texd/internal/domain"
	"texd/internal/infra"
)

// GatewayOptions configures a Gateway. Engine is required; everything
// else has a working default or is optional.
type GatewayOptions struct {
	Engine        Engine
	Coalescer     *coalesce.Coalescer
	Cache         *cache.Bitmaps
	Journal       domain.RenderJournal
	Logger        *infra.Logger
	RenderTimeout time.Duration
}

// Gateway issues exactly one coalescer registration per render call and
// maps engine answers onto tagged outcomes. Supersession and
// cancellation are values, never errors: the error return is reserved
// for rejected requests and abandoned waits.
type Gateway struct {
	engine        Engine
	jobs          *coalesce.Coalescer
	cache         *cache.Bitmaps
	journal       domain.RenderJournal
	logger        *infra.Logger
	renderTimeout time.Duration
}

// NewGateway constructs a Gateway.
func NewGateway(opts GatewayOptions) (*Gateway, error) {
	if opts.Engine == nil {
		return nil, errors.New("katex: engine is required")
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	jobs := opts.Coalescer
	if jobs == nil {
		jobs = coalesce.New(logger)
	}
	timeout := opts.RenderTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		engine:        opts.Engine,
		jobs:          jobs,
		cache:         opts.Cache,
		journal:       opts.Journal,
		logger:        logger,
		renderTimeout: timeout,
	}, nil
}

// Render submits one render job under req.Key and waits for its tagged
// outcome. A ctx error means the caller abandoned the wait; the job is
// then cancelled on the way out (scoped acquisition), but only if it is
// still the key's current one.
func (g *Gateway) Render(ctx context.Context, req Request) (coalesce.Outcome, error) {
	if err := req.validate(); err != nil {
		return coalesce.Outcome{}, err
	}

	spec := SubmitSpec{
		Key:         req.Key,
		Text:        EscapeScriptLiteral(norm.NFC.String(req.Text)),
		DisplayMode: req.DisplayMode,
		Color:       req.Color.CSS(),
		FontSizePx:  req.FontSize,
		MaxWidthPx:  effectiveMaxWidth(req.DisplayMode, req.MaxWidth),
	}
	digest := spec.digest()

	if data, ok := g.cache.Get(digest); ok {
		// A cached answer still goes through the coalescer: it
		// supersedes any outstanding job under the key, and the caller
		// sees whatever the ticket delivers. If another registration
		// lands before the Resolve, that is Superseded, not Completed.
		ticket := g.jobs.Register(req.Key)
		g.logger.Debug().
			Str("key", req.Key).
			Str("digest", digest).
			Uint64("generation", ticket.Generation()).
			Msg("katex: bitmap cache hit")
		g.jobs.Resolve(req.Key, ticket.Generation(), coalesce.Outcome{State: domain.JobStateCompleted, Data: data})
		out, err := ticket.Wait(ctx)
		if err != nil {
			return coalesce.Outcome{}, fmt.Errorf("katex: wait for render: %w", err)
		}
		g.record(req.Key, ticket.Generation(), out, 0)
		return out, nil
	}

	ticket := g.jobs.Register(req.Key)
	spec.Generation = ticket.Generation()
	start := time.Now()
	go g.dispatch(spec, digest)

	out, err := ticket.Wait(ctx)
	if err != nil {
		if g.jobs.CancelGeneration(req.Key, ticket.Generation()) {
			g.abandon(req.Key)
		}
		return coalesce.Outcome{}, fmt.Errorf("katex: wait for render: %w", err)
	}
	g.record(req.Key, ticket.Generation(), out, time.Since(start))
	return out, nil
}

// Cancel resolves the pending job for key as Cancelled, if there is one,
// and signals the engine to abandon the work. It always succeeds,
// including with no outstanding job.
func (g *Gateway) Cancel(ctx context.Context, key string) error {
	if g.jobs.Cancel(key) {
		if err := g.engine.Abandon(ctx, key); err != nil {
			g.logger.Warn().Err(err).Str("key", key).Msg("katex: engine abandon failed")
		}
	}
	return nil
}

// Digest returns the content digest the bitmap for req would be cached
// and persisted under.
func (g *Gateway) Digest(req Request) string {
	spec := SubmitSpec{
		Text:        EscapeScriptLiteral(norm.NFC.String(req.Text)),
		DisplayMode: req.DisplayMode,
		Color:       req.Color.CSS(),
		FontSizePx:  req.FontSize,
		MaxWidthPx:  effectiveMaxWidth(req.DisplayMode, req.MaxWidth),
	}
	return spec.digest()
}

func (g *Gateway) dispatch(spec SubmitSpec, digest string) {
	ctx, cancel := context.WithTimeout(context.Background(), g.renderTimeout)
	defer cancel()

	data, err := g.engine.Submit(ctx, spec)
	out := outcomeForResult(data, err)
	// Cache before delivery so a caller re-requesting right after the
	// outcome lands already sees the bitmap.
	if out.State == domain.JobStateCompleted {
		g.cache.Add(digest, data)
	}
	if !g.jobs.Resolve(spec.Key, spec.Generation, out) {
		// Superseded or cancelled while the engine worked; the answer
		// must not reach anyone.
		g.logger.Debug().
			Str("key", spec.Key).
			Uint64("generation", spec.Generation).
			Msg("katex: engine answer discarded")
	}
}

func (g *Gateway) abandon(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.engine.Abandon(ctx, key); err != nil {
		g.logger.Warn().Err(err).Str("key", key).Msg("katex: engine abandon failed")
	}
}

func (g *Gateway) record(key string, gen uint64, out coalesce.Outcome, took time.Duration) {
	if g.journal == nil {
		return
	}
	rec := &domain.RenderRecord{
		ID:         uuid.NewString(),
		Key:        key,
		Generation: gen,
		State:      out.State,
		ByteSize:   len(out.Data),
		Duration:   took,
	}
	if out.Err != nil {
		rec.ErrorMessage = out.Err.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.journal.Record(ctx, rec); err != nil {
		g.logger.Warn().Err(err).Str("key", key).Msg("katex: journal write failed")
	}
}

func outcomeForResult(data []byte, err error) coalesce.Outcome {
	switch {
	case err == nil:
		return coalesce.Outcome{State: domain.JobStateCompleted, Data: data}
	case errors.Is(err, domain.ErrCancelled):
		return coalesce.Outcome{State: domain.JobStateCancelled, Err: err}
	default:
		return coalesce.Outcome{State: domain.JobStateFailed, Err: err}
	}
}

func (s SubmitSpec) digest() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%t|%s|%g|%g", s.Text, s.DisplayMode, s.Color, s.FontSizePx, s.MaxWidthPx)
	return hex.EncodeToString(h.Sum(nil))
}
