package differ

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitwebsync/internal/gitweb"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// UnsyncedReport maps a repository to master's last change minus slave's.
type UnsyncedReport map[string]time.Duration

// MissingReport maps a repository absent from slave to master's last change.
type MissingReport map[string]time.Time

// Differ compares a slave gitweb against its master. Every call fetches
// fresh pages; nothing is kept between calls.
type Differ struct {
	source      gitweb.ListingSource
	masterURL   string
	slaveURL    string
	concurrency int
}

func NewDiffer(source gitweb.ListingSource, masterURL string, slaveURL string, concurrency int) *Differ {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Differ{
		source:      source,
		masterURL:   masterURL,
		slaveURL:    slaveURL,
		concurrency: concurrency,
	}
}

// Diff fetches both project lists and compares master's (current) against
// slave's (past).
func (d *Differ) Diff(ctx context.Context) (MappingDiff, error) {
	master, err := d.source.FetchInventory(ctx, d.masterURL)
	if err != nil {
		return MappingDiff{}, fmt.Errorf("error fetching master project list: %w", err)
	}

	slave, err := d.source.FetchInventory(ctx, d.slaveURL)
	if err != nil {
		return MappingDiff{}, fmt.Errorf("error fetching slave project list: %w", err)
	}

	diff := BuildDiff(master, slave)
	log.Info().
		Int("master_repos", len(master)).
		Int("slave_repos", len(slave)).
		Int("added", len(diff.added)).
		Int("removed", len(diff.removed)).
		Int("changed", len(diff.changed)).
		Msg("Compared project lists")

	return diff, nil
}

// Unsynced reports the time skew of every repository whose age differs
// between master and slave.
func (d *Differ) Unsynced(ctx context.Context) (UnsyncedReport, error) {
	diff, err := d.Diff(ctx)
	if err != nil {
		return nil, err
	}

	return d.UnsyncedFrom(ctx, diff)
}

// UnsyncedFrom fetches both last change timestamps of each changed repository
// in diff. Any failure discards the whole report.
func (d *Differ) UnsyncedFrom(ctx context.Context, diff MappingDiff) (UnsyncedReport, error) {
	report := UnsyncedReport{}
	var mu sync.Mutex

	err := d.forEach(ctx, diff.Changed(), func(ctx context.Context, repo string) error {
		masterChange, err := d.source.FetchLastChange(ctx, d.masterURL, repo)
		if err != nil {
			return fmt.Errorf("error fetching master last change of %s: %w", repo, err)
		}

		slaveChange, err := d.source.FetchLastChange(ctx, d.slaveURL, repo)
		if err != nil {
			return fmt.Errorf("error fetching slave last change of %s: %w", repo, err)
		}

		skew := masterChange.Sub(slaveChange)
		log.Info().Str("repo", repo).Dur("skew", skew).Msg("Repository not in sync")

		mu.Lock()
		report[repo] = skew
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// Missing reports master's last change of every repository slave does not list.
func (d *Differ) Missing(ctx context.Context) (MissingReport, error) {
	diff, err := d.Diff(ctx)
	if err != nil {
		return nil, err
	}

	return d.MissingFrom(ctx, diff)
}

func (d *Differ) MissingFrom(ctx context.Context, diff MappingDiff) (MissingReport, error) {
	report := MissingReport{}
	var mu sync.Mutex

	err := d.forEach(ctx, diff.Added(), func(ctx context.Context, repo string) error {
		masterChange, err := d.source.FetchLastChange(ctx, d.masterURL, repo)
		if err != nil {
			return fmt.Errorf("error fetching master last change of %s: %w", repo, err)
		}

		mu.Lock()
		report[repo] = masterChange
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// forEach runs fn for every repo with at most d.concurrency running at once,
// and returns the first error after all started calls have finished.
func (d *Differ) forEach(ctx context.Context, repos []string, fn func(context.Context, string) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, repo := range repos {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, repo)
		})
	}

	return g.Wait()
}
