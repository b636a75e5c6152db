package sync_checker

import (
	"context"
	"time"

	"gitwebsync/internal/differ"
	"gitwebsync/internal/metrics"

	"github.com/rs/zerolog/log"
)

//counterfeiter:generate -o ./fakes/ . SyncDifferInterface
type SyncDifferInterface interface {
	Diff(ctx context.Context) (differ.MappingDiff, error)
	UnsyncedFrom(ctx context.Context, diff differ.MappingDiff) (differ.UnsyncedReport, error)
}

// CheckSync compares the slave against the master, decides the monitoring
// state and hands the result to every notifier.
//
// Notifier failures are logged and do not change the result.
func CheckSync(
	ctx context.Context,
	d SyncDifferInterface,
	thresholds Thresholds,
	m *metrics.Metrics,
	notifiers ...SyncNotifierInterface,
) CheckResult {
	start := time.Now()

	result := checkSync(ctx, d, thresholds, m)

	metrics.CheckState(m, int(result.State))
	metrics.CheckDuration(m, start)

	if result.State == StateUnknown {
		log.Error().Err(result.Err).Msg("Sync check failed")
	} else {
		log.Info().
			Str("state", result.State.String()).
			Int("unsynced", len(result.Report)).
			Int("missing", len(result.Added)).
			Int("extra", len(result.Removed)).
			Msg("Sync check finished")
	}

	for _, notifier := range notifiers {
		if err := notifier.Notify(result); err != nil {
			log.Error().Err(err).Msg("failed to send sync check notification")
		}
	}

	return result
}

func checkSync(ctx context.Context, d SyncDifferInterface, thresholds Thresholds, m *metrics.Metrics) CheckResult {
	diff, err := d.Diff(ctx)
	if err != nil {
		return Failed(err, thresholds)
	}

	added := diff.Added()
	removed := diff.Removed()
	metrics.InventoryDiff(m, len(added), len(removed))

	report, err := d.UnsyncedFrom(ctx, diff)
	if err != nil {
		return Failed(err, thresholds)
	}
	metrics.UnsyncedRepos(m, len(report))

	result := Evaluate(report, thresholds)
	result.Added = added
	result.Removed = removed

	return result
}
