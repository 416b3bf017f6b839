package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/axle/pkg/cache"
	"github.com/platinummonkey/axle/pkg/definition"
	"github.com/platinummonkey/axle/pkg/observability"
	"github.com/platinummonkey/axle/pkg/validation"
)

var tracer = otel.Tracer("axle/corpus")

// Options tunes a Runner. The zero value is usable: four workers, no cache,
// no metrics.
type Options struct {
	// Concurrency bounds the parallel evaluate workers.
	Concurrency int
	// Cache, when set, reuses per-document outcomes across runs.
	Cache cache.Cache
	// Metrics, when set, receives run and document counters.
	Metrics *observability.Metrics
}

// Runner evaluates every document of a source and admits the extracted
// entities into a fresh registry per run.
type Runner struct {
	source Source
	log    *logrus.Logger
	opts   Options
}

// NewRunner builds a runner over a source. A nil logger silences per-file
// output, which ad-hoc API checks use.
func NewRunner(source Source, log *logrus.Logger, opts Options) *Runner {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Runner{source: source, log: log, opts: opts}
}

// documentOutcome is the pure result of evaluating one document. Exactly one
// of Violation or the entity fields is populated; it is the unit the cache
// stores.
type documentOutcome struct {
	Services   []*validation.Service  `json:"services,omitempty"`
	Diagnostic *validation.Diagnostic `json:"diagnostic,omitempty"`
	Violation  *validation.Violation  `json:"violation,omitempty"`
}

// Run checks the whole corpus once. Documents are evaluated in parallel
// (evaluation is pure) and admitted sequentially in sorted entry order, so
// reports are reproducible for a given corpus state. The returned error
// covers infrastructure failure only (unlistable source, unreadable file);
// consistency violations live in the report.
func (r *Runner) Run(ctx context.Context, trigger string) (*Report, error) {
	ctx, span := tracer.Start(ctx, "corpus.Run",
		trace.WithAttributes(
			attribute.String("corpus.source", r.source.Label()),
			attribute.String("corpus.trigger", trigger),
		),
	)
	defer span.End()

	startedAt := time.Now().UTC()
	entries, err := r.source.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing corpus failed")
		r.observeRun(trigger, "error", time.Since(startedAt))
		return nil, fmt.Errorf("list corpus %s: %w", r.source.Label(), err)
	}
	sortEntries(entries)

	outcomes := make([]*documentOutcome, len(entries))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.opts.Concurrency)
	for i, entry := range entries {
		i, entry := i, entry // per-iteration copies: closures below run concurrently
		eg.Go(func() error {
			outcome, err := r.evaluate(egCtx, entry)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reading corpus failed")
		r.observeRun(trigger, "error", time.Since(startedAt))
		return nil, err
	}

	registry := validation.NewRegistry()
	report := &Report{
		RunID:     uuid.New().String(),
		Trigger:   trigger,
		Source:    r.source.Label(),
		StartedAt: startedAt,
		Documents: len(entries),
	}

	for i, entry := range entries {
		violations := admit(registry, outcomes[i])
		report.Violations = append(report.Violations, violations...)

		fields := logrus.Fields{
			"path":       entry.Path,
			"namespace":  string(entry.Namespace),
			"services":   len(outcomes[i].Services),
			"violations": len(violations),
		}
		if outcomes[i].Diagnostic != nil {
			fields["diagnostics"] = 1
		}
		if len(violations) > 0 {
			r.log.WithFields(fields).Warn("document rejected")
		} else {
			r.log.WithFields(fields).Info("document processed")
		}

		if r.opts.Metrics != nil {
			r.opts.Metrics.DocumentsProcessed.WithLabelValues(string(entry.Namespace)).Inc()
			for _, v := range violations {
				r.opts.Metrics.ViolationsTotal.WithLabelValues(string(v.Kind)).Inc()
			}
		}
	}

	stats := registry.Stats()
	report.Services = stats.Services
	report.Diagnostics = stats.Diagnostics
	report.JobIDs = stats.JobIDs
	report.DTCIDs = stats.DTCIDs
	report.FinishedAt = time.Now().UTC()
	report.Passed = len(report.Violations) == 0

	outcome := "passed"
	if !report.Passed {
		outcome = "failed"
	}
	r.observeRun(trigger, outcome, report.Duration())
	if r.opts.Metrics != nil {
		r.opts.Metrics.RegistryServices.Set(float64(stats.Services))
		r.opts.Metrics.RegistryDiagnostics.Set(float64(stats.Diagnostics))
	}

	span.SetAttributes(
		attribute.Int("corpus.documents", report.Documents),
		attribute.Int("corpus.services", report.Services),
		attribute.Int("corpus.violations", len(report.Violations)),
		attribute.Bool("corpus.passed", report.Passed),
	)
	return report, nil
}

// evaluate reads and checks one document, consulting the cache first. Cache
// failures are logged and ignored; they never fail the run.
func (r *Runner) evaluate(ctx context.Context, entry Entry) (*documentOutcome, error) {
	data, err := r.source.Read(ctx, entry.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}

	var key string
	if r.opts.Cache != nil {
		key = cache.Key(string(entry.Namespace), entry.Path, data)
		if cached, err := r.opts.Cache.Get(ctx, key); err == nil {
			var outcome documentOutcome
			if err := json.Unmarshal(cached, &outcome); err == nil {
				if r.opts.Metrics != nil {
					r.opts.Metrics.CacheHits.Inc()
				}
				return &outcome, nil
			}
			r.log.WithField("path", entry.Path).Warn("discarding undecodable cache entry")
		} else if err != cache.ErrCacheMiss {
			r.log.WithError(err).WithField("path", entry.Path).Warn("cache lookup failed")
		}
		if r.opts.Metrics != nil {
			r.opts.Metrics.CacheMisses.Inc()
		}
	}

	outcome := evaluateDocument(data, entry.Namespace, entry.Path)

	if r.opts.Cache != nil {
		if encoded, err := json.Marshal(outcome); err == nil {
			if err := r.opts.Cache.Set(ctx, key, encoded); err != nil {
				r.log.WithError(err).WithField("path", entry.Path).Warn("cache store failed")
			}
		}
	}
	return outcome, nil
}

// evaluateDocument is the pure per-document pipeline: parse, classify,
// extract. The namespace selects which extractor runs; unclassified
// documents run both.
func evaluateDocument(data []byte, ns definition.Namespace, origin string) *documentOutcome {
	doc, err := definition.Parse(data)
	if err != nil {
		return &documentOutcome{Violation: validation.NewMalformedDocument(origin, err)}
	}

	if err := validation.Classify(doc, ns, origin); err != nil {
		v, _ := validation.AsViolation(err)
		return &documentOutcome{Violation: v}
	}

	outcome := &documentOutcome{}
	if ns != definition.NamespaceDiagnostics {
		services, err := validation.ExtractServices(doc, origin)
		if err != nil {
			v, _ := validation.AsViolation(err)
			return &documentOutcome{Violation: v}
		}
		outcome.Services = services
	}
	if ns != definition.NamespaceInterfaces {
		diag, err := validation.ExtractDiagnostic(doc, origin)
		if err != nil {
			v, _ := validation.AsViolation(err)
			return &documentOutcome{Violation: v}
		}
		outcome.Diagnostic = diag
	}
	return outcome
}

// admit registers one document's entities. Admission is per entity: a
// rejected service does not block its siblings, and a document-level
// violation from evaluation short-circuits into the report unchanged.
func admit(registry *validation.Registry, outcome *documentOutcome) []*validation.Violation {
	if outcome.Violation != nil {
		return []*validation.Violation{outcome.Violation}
	}

	var violations []*validation.Violation
	for _, svc := range outcome.Services {
		if err := registry.AdmitService(svc); err != nil {
			if v, ok := validation.AsViolation(err); ok {
				violations = append(violations, v)
			}
		}
	}
	if outcome.Diagnostic != nil {
		if err := registry.AdmitDiagnostic(outcome.Diagnostic); err != nil {
			if v, ok := validation.AsViolation(err); ok {
				violations = append(violations, v)
			}
		}
	}
	return violations
}

func (r *Runner) observeRun(trigger, outcome string, elapsed time.Duration) {
	if r.opts.Metrics == nil {
		return
	}
	r.opts.Metrics.RunsTotal.WithLabelValues(trigger, outcome).Inc()
	r.opts.Metrics.RunDuration.Observe(elapsed.Seconds())
}
