package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"sjsage522/partsfinder/helpers"
	"sjsage522/partsfinder/internal/dedup"
	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/logger"
	"sjsage522/partsfinder/services/notifier"
)

// ErrRunInProgress is returned by RunOnce while another run is in flight
var ErrRunInProgress = errors.New("worker: run already in progress")

// SectionCollector scrapes whole forum sections once per run
type SectionCollector interface {
	Collect(ctx context.Context, sections []listing.Section, pages int) []listing.Listing
}

// Searcher is a keyword-driven listing source
type Searcher interface {
	Name() string
	Search(ctx context.Context, keyword string) ([]listing.Listing, error)
}

// ItemStore persists listings
type ItemStore interface {
	AddItems(ctx context.Context, items []listing.Listing) (int, error)
}

// Options controls what a run searches and how often runs happen
type Options struct {
	Sections    []listing.Section
	Pages       int
	Keywords    []string
	Interval    time.Duration
	SourceDelay time.Duration
}

// RunResult summarizes one search cycle
type RunResult struct {
	RunID    string
	Found    int
	New      int
	Saved    int
	Duration time.Duration
}

// Worker handles the search, dedup, persist and notify cycle
type Worker struct {
	sections  SectionCollector
	searchers []Searcher
	seen      *dedup.SeenSet
	store     ItemStore
	notifiers []notifier.Notifier
	opts      Options
	log       *logger.Logger
	running   atomic.Bool
}

// NewWorker creates a new worker. sections may be nil when no forum
// sections are scraped.
func NewWorker(
	sections SectionCollector,
	searchers []Searcher,
	seen *dedup.SeenSet,
	store ItemStore,
	notifiers []notifier.Notifier,
	opts Options,
) *Worker {
	if seen == nil {
		seen = dedup.NewSeenSet()
	}
	return &Worker{
		sections:  sections,
		searchers: searchers,
		seen:      seen,
		store:     store,
		notifiers: notifiers,
		opts:      opts,
		log:       logger.ForAgent(),
	}
}

// Start runs a cycle immediately and then once per interval until ctx is done
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.opts.Interval).Msg("Scheduled searches")
	for {
		if _, err := w.RunOnce(ctx); err != nil {
			w.log.Error().Err(err).Msg("Search cycle failed")
		}
		if !helpers.Sleep(ctx, w.opts.Interval) {
			w.log.Info().Msg("Worker stopped")
			return
		}
	}
}

// RunOnce executes a single search cycle. Only listings not seen before
// are stored and sent to the notifiers.
func (w *Worker) RunOnce(ctx context.Context) (RunResult, error) {
	if !w.running.CompareAndSwap(false, true) {
		return RunResult{}, ErrRunInProgress
	}
	defer w.running.Store(false)

	start := time.Now()
	result := RunResult{RunID: uuid.NewString()}
	ctx = notifier.WithRunID(ctx, result.RunID)
	log := w.log.WithField("run_id", result.RunID)
	log.Info().Msg("Starting search cycle")

	results := w.searchAll(ctx, log)
	result.Found = len(results)
	log.Info().Int("results", result.Found).Msg("Total results")

	newItems := w.seen.FilterUnseen(results)
	result.New = len(newItems)
	log.Info().Int("new", result.New).Msg("New items")

	var storeErr error
	if len(newItems) > 0 && w.store != nil {
		saved, err := w.store.AddItems(ctx, newItems)
		result.Saved = saved
		if err != nil {
			storeErr = err
			log.Error().Err(err).Int("saved", saved).Msg("Failed to save items")
		} else {
			log.Info().Int("saved", saved).Msg("Saved new items to database")
		}
	}

	if len(newItems) > 0 {
		w.notify(ctx, log, newItems)
	}

	result.Duration = time.Since(start)
	log.Info().Dur("elapsed", result.Duration).Msg("Search cycle complete")
	return result, storeErr
}

// searchAll scrapes the forum sections once, then asks every searcher about
// every keyword, pausing between source calls
func (w *Worker) searchAll(ctx context.Context, log *logger.Logger) []listing.Listing {
	var results []listing.Listing

	if w.sections != nil && len(w.opts.Sections) > 0 {
		sectionResults := w.sections.Collect(ctx, w.opts.Sections, w.opts.Pages)
		results = append(results, sectionResults...)
		log.Info().Int("results", len(sectionResults)).Msg("Forum sections scraped")
	}

	if len(w.opts.Keywords) == 0 {
		log.Warn().Msg("No part keywords configured")
		return results
	}

	calls := 0
	for _, keyword := range w.opts.Keywords {
		log.Info().Str("keyword", keyword).Msg("Searching")
		for _, s := range w.searchers {
			if calls > 0 && !helpers.Sleep(ctx, w.opts.SourceDelay) {
				log.Info().Msg("Search interrupted")
				return results
			}
			calls++

			items, err := s.Search(ctx, keyword)
			if err != nil {
				log.Error().Err(err).Str("source", s.Name()).Str("keyword", keyword).Msg("Source search failed")
				continue
			}
			results = append(results, items...)
			log.Info().Str("source", s.Name()).Str("keyword", keyword).Int("results", len(items)).Msg("Source searched")
		}
	}
	return results
}

// notify sends items to every sink; one sink failing does not affect the others
func (w *Worker) notify(ctx context.Context, log *logger.Logger, items []listing.Listing) {
	for _, n := range w.notifiers {
		if err := n.SendItems(ctx, items); err != nil {
			log.Error().Err(err).Str("notifier", n.Name()).Msg("Notification failed")
		}
	}
}
