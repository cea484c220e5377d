package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"meikan/internal/logging"
	"meikan/internal/nameutil"
	"meikan/internal/regcache"
	"meikan/internal/registry"
	"meikan/internal/roster"
	"meikan/internal/similarity"
	"meikan/internal/verifycache"
)

// Options tunes a Scheduler.
type Options struct {
	// MaxWorkers is the configured worker pool ceiling.
	MaxWorkers int
	// WorkerHardCap bounds the pool regardless of configuration, to avoid
	// overwhelming the registry on huge datasets.
	WorkerHardCap int
	// Policy holds the similarity thresholds.
	Policy similarity.Policy
	// Progress, when set, is invoked after each completed row with the
	// number of rows done and the total.
	Progress func(done, total int)
}

// Scheduler orchestrates concurrent per-row verification. The team-search
// and roster caches live for the scheduler's lifetime; the verification
// cache is shared, persistent state owned by the caller.
type Scheduler struct {
	client  registry.Client
	teams   *regcache.TeamSearch
	rosters *regcache.Roster
	verify  *verifycache.Cache
	opts    Options
	logger  *slog.Logger
}

// New creates a Scheduler. verify may be nil when cross-run caching is
// disabled.
func New(client registry.Client, verify *verifycache.Cache, opts Options, logger *slog.Logger) *Scheduler {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 10
	}
	if opts.WorkerHardCap <= 0 {
		opts.WorkerHardCap = 16
	}
	if opts.Policy == (similarity.Policy{}) {
		opts.Policy = similarity.DefaultPolicy()
	}
	if verify == nil {
		verify = verifycache.NewCache("", false, nil)
	}
	return &Scheduler{
		client:  client,
		teams:   regcache.NewTeamSearch(),
		rosters: regcache.NewRoster(),
		verify:  verify,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "reconcile"),
	}
}

// task is one row awaiting verification.
type task struct {
	row       roster.Row
	name      string // resolved raw player name
	canonical string // canonical comparison form
	cacheKey  string
}

// Run verifies every dataset row against the institution's registry
// entries and returns one result per row in original row order.
//
// Rows resolvable from the persistent cache never touch the network; when
// every row is cached the registry client is not contacted at all.
// Authentication or pre-load failures abort the whole run; every other
// failure is converted into a row-scoped error result.
func (s *Scheduler) Run(ctx context.Context, dataset roster.Dataset, inst roster.Institution) (*RunResult, error) {
	total := len(dataset.Rows)
	results := make([]Result, total)
	done := 0
	progress := func() {
		done++
		if s.opts.Progress != nil {
			s.opts.Progress(done, total)
		}
	}

	canonicalInst := inst.Canonical()
	var pending []task
	for i, row := range dataset.Rows {
		name, ok := row.PlayerName()
		if !ok {
			results[i] = Result{
				RowIndex: row.Index,
				Status:   StatusMissingData,
				Message:  "no player name column resolved",
			}
			progress()
			continue
		}
		canonical := nameutil.Normalize(name)
		if canonical == "" {
			results[i] = Result{
				RowIndex: row.Index,
				Status:   StatusMissingData,
				Message:  "player name is empty after normalization",
			}
			progress()
			continue
		}

		t := task{
			row:       row,
			name:      name,
			canonical: canonical,
			cacheKey:  verifycache.Key(canonical, canonicalInst),
		}
		if entry, found := s.verify.Lookup(t.cacheKey); found {
			results[i] = s.adaptCached(t, entry)
			progress()
			continue
		}
		pending = append(pending, t)
	}

	if len(pending) > 0 {
		if err := s.runPending(ctx, inst, pending, dataset, results, progress); err != nil {
			return nil, err
		}
	}

	if err := s.verify.Flush(); err != nil {
		s.logger.Warn("verification cache flush failed",
			logging.String(logging.FieldEventType, "verifycache_flush_failed"),
			logging.Error(err),
			logging.String(logging.FieldImpact, "outcomes will be re-fetched next run"))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].RowIndex < results[j].RowIndex })

	corrections := make(map[int]map[string]string, len(results))
	for _, result := range results {
		if len(result.Corrections) > 0 {
			corrections[result.RowIndex] = result.Corrections
		}
	}

	return &RunResult{
		Results:   results,
		Corrected: dataset.WithCorrections(corrections),
		Summary:   summarize(results),
	}, nil
}

// runPending authenticates, pre-loads the institution, and fans the
// remaining tasks out over the worker pool.
func (s *Scheduler) runPending(ctx context.Context, inst roster.Institution, pending []task, dataset roster.Dataset, results []Result, progress func()) error {
	if err := s.client.Authenticate(ctx); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	members, err := s.preload(ctx, inst)
	if err != nil {
		return fmt.Errorf("preload institution %q: %w", inst.Name, err)
	}
	if len(members) == 0 {
		s.logger.Info("institution matched no registry teams",
			logging.String(logging.FieldInstitution, inst.Name))
	}

	workers := poolSize(s.opts.MaxWorkers, s.opts.WorkerHardCap, len(pending))
	s.logger.Debug("dispatching verification tasks",
		logging.Int("tasks", len(pending)),
		logging.Int("workers", workers),
		logging.String(logging.FieldInstitution, inst.Name))

	type slot struct {
		position int
		task     task
	}
	positions := make(map[int]int, len(results))
	for i, row := range dataset.Rows {
		positions[row.Index] = i
	}

	tasks := make(chan slot)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				result := s.verifyRow(ctx, item.task, members)
				mu.Lock()
				results[item.position] = result
				progress()
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, t := range pending {
		select {
		case <-ctx.Done():
			break dispatch
		case tasks <- slot{position: positions[t.row.Index], task: t}:
		}
	}
	close(tasks)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// poolSize bounds worker fan-out: never more workers than tasks, twice the
// CPU parallelism hint, the configured maximum, or the hard cap.
func poolSize(configuredMax, hardCap, taskCount int) int {
	size := configuredMax
	if hint := runtime.NumCPU() * 2; hint < size {
		size = hint
	}
	if taskCount < size {
		size = taskCount
	}
	if hardCap < size {
		size = hardCap
	}
	if size < 1 {
		size = 1
	}
	return size
}

// adaptCached converts a persistent cache entry into this row's result.
// Corrections are recomputed against the row's own values so the sparsity
// rule holds for datasets other than the one that produced the entry.
func (s *Scheduler) adaptCached(t task, entry verifycache.Entry) Result {
	result := Result{
		RowIndex:    t.row.Index,
		Status:      Status(entry.Status),
		Similarity:  entry.Similarity,
		Member:      entry.Member,
		Corrections: entry.Corrections,
		Message:     entry.Message,
	}
	if entry.Member != nil {
		result.Corrections = diffCorrections(t.row, entry.Member)
	}
	return result
}
