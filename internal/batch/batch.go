// Package batch resolves many queries concurrently with a bounded worker
// pool and aggregates the results in input order.
package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hjiang13/bibtexmate/internal/catalog"
	"github.com/hjiang13/bibtexmate/internal/doi"
	"github.com/hjiang13/bibtexmate/internal/fields"
)

// DefaultWorkers is the default number of concurrent resolutions.
const DefaultWorkers = 4

// Kind says how a query is resolved.
type Kind string

const (
	// KindTitle is searched by title.
	KindTitle Kind = "title"
	// KindDOI is rendered directly.
	KindDOI Kind = "doi"
	// KindReference is a raw reference string: its DOI is used when it
	// carries one, otherwise its quoted title or the sentence after its
	// year is searched, falling back to the whole string.
	KindReference Kind = "reference"
)

// Item is one query in a batch.
type Item struct {
	Query string
	Kind  Kind
}

// Request is the input of a batch run.
type Request struct {
	Titles     []string
	DOIs       []string
	References []string
	Format     catalog.Format
}

// Items flattens the request into titles, then DOIs, then references,
// dropping blank queries.
func (r Request) Items() []Item {
	items := make([]Item, 0, len(r.Titles)+len(r.DOIs)+len(r.References))
	add := func(queries []string, kind Kind) {
		for _, q := range queries {
			if strings.TrimSpace(q) == "" {
				continue
			}
			items = append(items, Item{Query: q, Kind: kind})
		}
	}
	add(r.Titles, KindTitle)
	add(r.DOIs, KindDOI)
	add(r.References, KindReference)
	return items
}

// Lookup resolves single queries. *catalog.Resolver implements it.
type Lookup interface {
	ResolveTitle(ctx context.Context, query string, format catalog.Format) catalog.MatchResult
	ResolveDOI(ctx context.Context, id string, format catalog.Format) catalog.MatchResult
}

// Resolver runs batches against a Lookup.
type Resolver struct {
	lookup  Lookup
	workers int
	logger  zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger for per-item outcomes.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver creates a batch Resolver.
func NewResolver(l Lookup, opts ...Option) *Resolver {
	r := &Resolver{
		lookup:  l,
		workers: DefaultWorkers,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs every item of the request and returns the aggregated outcome.
// A failing item never aborts its siblings.
func (r *Resolver) Resolve(ctx context.Context, req Request) *Outcome {
	items := req.Items()
	batchID := uuid.New().String()
	log := r.logger.With().Str("batch_id", batchID).Logger()

	log.Info().
		Int("items", len(items)).
		Int("workers", r.workers).
		Str("format", req.Format.String()).
		Msg("batch started")

	results := make([]catalog.MatchResult, len(items))
	var wg sync.WaitGroup
	sem := make(chan struct{}, r.workers)

	for i, item := range items {
		wg.Add(1)
		go func(idx int, it Item) {
			defer wg.Done()
			sem <- struct{}{}        // acquire semaphore
			defer func() { <-sem }() // release semaphore
			results[idx] = r.resolveItem(ctx, it, req.Format)
		}(i, item)
	}

	wg.Wait()

	out := newOutcome(batchID, req.Format)
	for i, item := range items {
		res := results[i]
		if !res.Resolved() {
			log.Warn().
				Str("query", item.Query).
				Str("kind", string(item.Kind)).
				Str("status", string(res.Status)).
				Err(res.Err).
				Msg("item not resolved")
		}
		out.add(item, res)
	}

	log.Info().
		Int("resolved", out.Resolved()).
		Int("failed", out.Failed()).
		Msg("batch finished")
	return out
}

func (r *Resolver) resolveItem(ctx context.Context, it Item, format catalog.Format) (res catalog.MatchResult) {
	defer func() {
		if p := recover(); p != nil {
			res = catalog.MatchResult{
				Query:  it.Query,
				Format: format,
				Status: catalog.StatusFetchFailed,
				Err:    fmt.Errorf("internal error resolving %q: %v", it.Query, p),
			}
		}
	}()

	switch it.Kind {
	case KindDOI:
		return r.lookup.ResolveDOI(ctx, it.Query, format)
	case KindReference:
		if id := doi.Find(it.Query); id != "" {
			res = r.lookup.ResolveDOI(ctx, id, format)
			res.Query = it.Query
			return res
		}
		if title, ok := fields.SearchTitle(it.Query); ok {
			res = r.lookup.ResolveTitle(ctx, title, format)
			res.Query = it.Query
			return res
		}
		return r.lookup.ResolveTitle(ctx, it.Query, format)
	default:
		return r.lookup.ResolveTitle(ctx, it.Query, format)
	}
}
