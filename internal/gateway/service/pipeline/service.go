package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"pipelinecheck/internal/gateway/logging"
	"pipelinecheck/internal/pipeline/graph"
)

// ErrInternal marks failures that are not about the submitted graph.
var ErrInternal = errors.New("internal pipeline check failure")

// CheckFunc is the validation the service runs; graph.Check in production.
type CheckFunc func(graph.Submission) graph.Report

type Options struct {
	// CacheSize bounds the report cache. 0 disables it.
	CacheSize  int
	Registerer prometheus.Registerer
	Logger     *slog.Logger
	Check      CheckFunc
}

// Service runs pipeline checks for all transports.
type Service struct {
	check   CheckFunc
	cache   *lru.Cache[string, graph.Report]
	metrics *Metrics
	logger  *slog.Logger
}

func New(opts Options) (*Service, error) {
	s := &Service{
		check:   opts.Check,
		metrics: NewMetrics(opts.Registerer),
		logger:  opts.Logger,
	}
	if s.check == nil {
		s.check = graph.Check
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, graph.Report](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create report cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Check validates sub. Structural problems and cycles are part of the
// returned report; the error is only set when the check itself broke, and
// then wraps ErrInternal.
func (s *Service) Check(ctx context.Context, sub graph.Submission) (report graph.Report, err error) {
	if s == nil {
		return graph.Report{}, fmt.Errorf("%w: pipeline service is not available", ErrInternal)
	}
	start := time.Now()

	key, keyOK := cacheKey(sub)
	if keyOK && s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.metrics.observe(cached, time.Since(start).Seconds(), true)
			s.logger.DebugContext(ctx, "pipeline check served from cache", "nodes", cached.NumNodes, "edges", cached.NumEdges)
			return cached.Clone(), nil
		}
	}

	defer func() {
		if r := recover(); r != nil {
			s.metrics.failure()
			s.logger.ErrorContext(ctx, "pipeline check panicked", "panic", r)
			report = graph.Report{}
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	report = s.check(sub)
	if report.ValidationErrors == nil {
		report.ValidationErrors = []string{}
	}
	if keyOK && s.cache != nil {
		s.cache.Add(key, report.Clone())
	}

	s.metrics.observe(report, time.Since(start).Seconds(), false)
	s.logger.InfoContext(ctx, "pipeline checked",
		"nodes", report.NumNodes,
		"edges", report.NumEdges,
		"is_dag", report.IsDAG,
		"outcome", report.Outcome(),
	)
	return report, nil
}

// cacheKey hashes the canonical JSON form of sub. Map keys in node data are
// sorted by encoding/json, so equal submissions share a key.
func cacheKey(sub graph.Submission) (string, bool) {
	b, err := json.Marshal(sub)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), true
}
