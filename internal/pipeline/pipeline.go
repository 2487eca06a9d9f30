// Package pipeline wires a source, the loader, the filter engine and the
// aggregator behind one memoized service.
package pipeline

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/repasses-dev/repasses/internal/cache"
	"github.com/repasses-dev/repasses/internal/filter"
	"github.com/repasses-dev/repasses/internal/loader"
	"github.com/repasses-dev/repasses/internal/log"
	"github.com/repasses-dev/repasses/internal/model"
	"github.com/repasses-dev/repasses/internal/source"
	"github.com/repasses-dev/repasses/internal/stats"
)

// Query selects the municipalities to load and the criteria applied to
// their records. An empty municipality list means the service defaults.
type Query struct {
	Municipalities []string
	Criteria       filter.Criteria
}

func (q Query) key() string {
	ids := model.NormalizeMunicipalities(q.Municipalities)
	slices.Sort(ids)
	return strings.Join(ids, ",") + "|" + q.Criteria.Key()
}

// Options configures a Service.
type Options struct {
	Municipalities []string
	MaxEntries     int
	TTL            time.Duration
}

// Service answers aggregation queries against one source location.
// Results are shared between callers and must be treated as read-only.
type Service struct {
	loader      *loader.Loader
	defaults    []string
	loads       *cache.Memo[*loader.Result]
	results     *cache.Memo[any]
	fingerprint func(string) (string, error)
	log         *log.Logger
}

// New creates a Service reading through ld.
func New(ld *loader.Loader, opts Options, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	defaults := model.NormalizeMunicipalities(opts.Municipalities)
	if len(defaults) == 0 {
		defaults = []string{"cotia"}
	}
	return &Service{
		loader:      ld,
		defaults:    defaults,
		loads:       cache.NewMemo[*loader.Result](opts.MaxEntries, opts.TTL, logger),
		results:     cache.NewMemo[any](opts.MaxEntries, opts.TTL, logger),
		fingerprint: source.Fingerprint,
		log:         logger.WithComponent(log.ComponentPipeline),
	}
}

// Invalidate drops every memoized load and aggregate.
func (s *Service) Invalidate() {
	s.loads.Invalidate()
	s.results.Invalidate()
}

// Load returns the records of the given municipalities, or of the
// defaults when none are given.
func (s *Service) Load(ctx context.Context, municipalities ...string) (*loader.Result, error) {
	ids := s.municipalities(municipalities)
	fp, err := s.currentFingerprint()
	if err != nil {
		return nil, err
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return s.loads.Do(ctx, cache.Key("load", sorted...), fp, func(ctx context.Context) (*loader.Result, error) {
		return s.loader.Load(ctx, ids...)
	})
}

// Records returns the filtered records for q in source order.
func (s *Service) Records(ctx context.Context, q Query) ([]model.Record, error) {
	return memoize(ctx, s, "records", q, func(ctx context.Context) ([]model.Record, error) {
		res, err := s.Load(ctx, q.Municipalities...)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		out := filter.Apply(res.Records, q.Criteria)
		s.log.DebugContext(ctx, "filtered records",
			log.FieldOperation, log.OpFilter,
			log.FieldRows, len(res.Records),
			log.FieldKept, len(out),
			log.FieldDuration, time.Since(start).Milliseconds())
		return out, nil
	})
}

// Summary returns global statistics for q.
func (s *Service) Summary(ctx context.Context, q Query) (stats.Summary, error) {
	return aggregate(ctx, s, "summary", q, stats.Global)
}

// Years returns per-year statistics for q.
func (s *Service) Years(ctx context.Context, q Query) ([]stats.Group[int32], error) {
	return aggregate(ctx, s, "years", q, stats.ByYear)
}

// Functions returns per-function statistics for q.
func (s *Service) Functions(ctx context.Context, q Query) ([]stats.Group[string], error) {
	return aggregate(ctx, s, "functions", q, stats.ByFunction)
}

// Municipalities returns per-municipality statistics for q.
func (s *Service) Municipalities(ctx context.Context, q Query) ([]stats.Group[string], error) {
	return aggregate(ctx, s, "municipalities", q, stats.ByMunicipality)
}

// Advanced returns distribution shape statistics for q.
func (s *Service) Advanced(ctx context.Context, q Query) (stats.Distribution, error) {
	return aggregate(ctx, s, "advanced", q, stats.Advanced)
}

// Entities returns the topN beneficiaries for q.
func (s *Service) Entities(ctx context.Context, q Query, topN int) ([]stats.EntityStats, error) {
	return aggregate(ctx, s, "entities:"+strconv.Itoa(topN), q, func(recs []model.Record) []stats.EntityStats {
		return stats.ByEntity(recs, topN)
	})
}

// Compare lines up the municipalities of q side by side.
func (s *Service) Compare(ctx context.Context, q Query, topN int) (stats.Comparison, error) {
	ids := s.municipalities(q.Municipalities)
	return aggregate(ctx, s, "compare:"+strconv.Itoa(topN)+":"+strings.Join(ids, ","), q, func(recs []model.Record) stats.Comparison {
		return stats.Compare(recs, ids, topN)
	})
}

func aggregate[T any](ctx context.Context, s *Service, op string, q Query, fn func([]model.Record) T) (T, error) {
	return memoize(ctx, s, op, q, func(ctx context.Context) (T, error) {
		var zero T
		recs, err := s.Records(ctx, q)
		if err != nil {
			return zero, err
		}
		start := time.Now()
		out := fn(recs)
		s.log.DebugContext(ctx, "aggregated",
			log.FieldOperation, log.OpAggregate,
			"kind", op,
			log.FieldRows, len(recs),
			log.FieldDuration, time.Since(start).Milliseconds())
		return out, nil
	})
}

func memoize[T any](ctx context.Context, s *Service, op string, q Query, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	q.Municipalities = s.municipalities(q.Municipalities)
	fp, err := s.currentFingerprint()
	if err != nil {
		return zero, err
	}
	v, err := s.results.Do(ctx, cache.Key(op, q.key()), fp, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}

// ResolveMunicipalities normalizes requested ids, falling back to the
// service defaults when none are usable.
func (s *Service) ResolveMunicipalities(requested []string) []string {
	return s.municipalities(requested)
}

func (s *Service) municipalities(requested []string) []string {
	ids := model.NormalizeMunicipalities(requested)
	if len(ids) == 0 {
		return slices.Clone(s.defaults)
	}
	return ids
}

func (s *Service) currentFingerprint() (string, error) {
	fp, err := s.fingerprint(s.loader.Location())
	if err != nil {
		return "", &loader.LoadError{Source: s.loader.Location(), Err: err}
	}
	return fp, nil
}
