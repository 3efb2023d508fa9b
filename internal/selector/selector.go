// Package selector decides which auto-configurations are imported and in what
// order: candidates are collected, exclusions applied, conditions evaluated, and
// the survivors handed to the sorter.
package selector

import (
	"context"
	"slices"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/anvil-platform/autoconfig/internal/condition"
	"github.com/anvil-platform/autoconfig/internal/metadata"
	"github.com/anvil-platform/autoconfig/internal/metrics"
	"github.com/anvil-platform/autoconfig/internal/sorter"
)

// ExcludeProperty is an environment property holding extra, comma-separated
// exclusions.
const ExcludeProperty = "autoconfig.exclude"

// Source is a metadata Reader that can also enumerate what it knows.
type Source interface {
	metadata.Reader
	Names() []string
}

type Request struct {
	// Candidates restricts selection. Empty means every name in the Source.
	Candidates []string
	Exclusions []string
}

type Result struct {
	// Imports is the ordered list of auto-configurations to apply.
	Imports    []string
	Exclusions []string
	Report     *condition.Report
}

// ImportEvent is delivered to listeners after filtering and before sorting.
type ImportEvent struct {
	Candidates []string
	Exclusions []string
}

type Listener interface {
	OnImport(ctx context.Context, event ImportEvent)
}

type ListenerFunc func(ctx context.Context, event ImportEvent)

func (f ListenerFunc) OnImport(ctx context.Context, event ImportEvent) {
	f(ctx, event)
}

type Selector struct {
	source    Source
	listeners []Listener
	recorder  *metrics.Recorder
}

type Option func(*Selector)

func WithListener(l Listener) Option {
	return func(s *Selector) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

func WithRecorder(r *metrics.Recorder) Option {
	return func(s *Selector) {
		s.recorder = r
	}
}

func New(source Source, opts ...Option) *Selector {
	s := &Selector{source: source}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select runs one import selection against env. On error no partial result is
// returned.
func (s *Selector) Select(ctx context.Context, req Request, env condition.Environment) (Result, error) {
	logger := log.FromContext(ctx).WithName("selector")

	candidates := req.Candidates
	if len(candidates) == 0 {
		candidates = s.source.Names()
	}
	candidates = dedupe(candidates)
	candidateSet := sets.New(candidates...)

	exclusions := sets.New[string]()
	for _, name := range req.Exclusions {
		if name = strings.TrimSpace(name); name != "" {
			exclusions.Insert(name)
		}
	}
	if raw, ok := env.Property(ExcludeProperty); ok {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				exclusions.Insert(name)
			}
		}
	}

	var invalid []string
	for _, name := range sets.List(exclusions) {
		if candidateSet.Has(name) {
			continue
		}
		if _, present := env.Library(name); present {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		return Result{}, &InvalidExclusionsError{Names: invalid}
	}

	report := condition.NewReport()
	report.RecordExclusions(sets.List(exclusions)...)

	filtered := make([]string, 0, len(candidates))
	unmatched := 0
	for _, name := range candidates {
		if exclusions.Has(name) {
			continue
		}
		m, err := s.source.Read(name)
		if err != nil || m.Conditions.IsZero() {
			report.RecordUnconditional(name)
			filtered = append(filtered, name)
			continue
		}
		outcome := condition.Evaluate(env, m.Conditions)
		report.Record(name, outcome)
		if !outcome.Match {
			unmatched++
			logger.V(1).Info("conditions did not match", "candidate", name, "messages", outcome.Messages)
			continue
		}
		filtered = append(filtered, name)
	}

	event := ImportEvent{Candidates: slices.Clone(filtered), Exclusions: sets.List(exclusions)}
	for _, l := range s.listeners {
		l.OnImport(ctx, event)
	}

	start := time.Now()
	imports, err := sorter.Sort(s.source, filtered)
	s.recorder.ObserveSort(time.Since(start), err)
	if err != nil {
		logger.Error(err, "failed to order auto-configurations", "candidateCount", len(filtered))
		return Result{}, err
	}
	s.recorder.ObserveSelection(len(candidates), len(imports), unmatched)

	logger.Info("selected auto-configurations",
		"candidateCount", len(candidates),
		"importCount", len(imports),
		"excludedCount", exclusions.Len(),
		"unmatchedCount", unmatched,
	)
	return Result{
		Imports:    imports,
		Exclusions: sets.List(exclusions),
		Report:     report,
	}, nil
}

func dedupe(names []string) []string {
	seen := sets.New[string]()
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen.Has(n) {
			continue
		}
		seen.Insert(n)
		out = append(out, n)
	}
	return out
}
