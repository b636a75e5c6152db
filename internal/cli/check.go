package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"time"

	"gitwebsync/internal/client"
	"gitwebsync/internal/config"
	"gitwebsync/internal/differ"
	"gitwebsync/internal/gitweb"
	"gitwebsync/internal/metrics"
	"gitwebsync/internal/page_fetcher"
	"gitwebsync/internal/report"
	"gitwebsync/internal/sync_checker"
	"gitwebsync/internal/upload"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

func newDiffer(cfg *config.Config, m *metrics.Metrics) (*differ.Differ, error) {
	collector, err := client.NewCollector(cfg)
	if err != nil {
		return nil, err
	}

	fetcher := page_fetcher.NewPageFetcher(collector, m)

	source, err := gitweb.NewSource(cfg.LastChangeSource, fetcher)
	if err != nil {
		return nil, err
	}

	return differ.NewDiffer(source, cfg.MasterURL, cfg.SlaveURL, cfg.Concurrency), nil
}

func runCheck(ctx context.Context, cfg *config.Config, out io.Writer) int {
	thresholds := sync_checker.Thresholds{Warn: cfg.WarnThreshold, Crit: cfg.CritThreshold}
	checkedAt := time.Now()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	d, err := newDiffer(cfg, m)
	if err != nil {
		return unknown(out, err)
	}

	notifiers := []sync_checker.SyncNotifierInterface{sync_checker.StdOutSyncNotifier{Out: out}}
	if cfg.HasSlackSettings() {
		webhook, err := url.Parse(cfg.SlackWebhook)
		if err != nil {
			return unknown(out, err)
		}
		notifiers = append(notifiers, sync_checker.NewSlackSyncNotifier(*webhook, cfg.MasterURL, cfg.SlaveURL))
	}

	result := sync_checker.CheckSync(ctx, d, thresholds, m, notifiers...)

	if cfg.HasPushGateway() {
		if err := metrics.PushMetrics(reg, cfg.PushGatewayUrl, hostOf(cfg.SlaveURL)); err != nil {
			log.Error().Err(err).Msg("Error pushing metrics to Prometheus Pushgateway")
		}
	}

	if cfg.HasReportBucket() {
		if err := archiveReport(ctx, cfg, result, checkedAt); err != nil {
			log.Error().Err(err).Msg("Error archiving sync report")
		}
	}

	return result.ExitCode()
}

func archiveReport(ctx context.Context, cfg *config.Config, result sync_checker.CheckResult, checkedAt time.Time) error {
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}

	uploader := upload.NewUploader(s3.NewFromConfig(awsCfg), cfg.ReportS3Bucket)
	return uploadReport(ctx, uploader, cfg, result, checkedAt)
}

func uploadReport(ctx context.Context, uploader upload.Uploader, cfg *config.Config, result sync_checker.CheckResult, checkedAt time.Time) error {
	doc := checkDocument(cfg, result, checkedAt)

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	key := upload.ReportKey(cfg.ReportS3Prefix, cfg.SlaveURL, checkedAt)
	return uploader.UploadReport(ctx, key, body, "application/json")
}

func checkDocument(cfg *config.Config, result sync_checker.CheckResult, checkedAt time.Time) report.Document {
	return report.Document{
		CheckedAt: checkedAt,
		Master:    cfg.MasterURL,
		Slave:     cfg.SlaveURL,
		State:     result.State.String(),
		Message:   result.Message(),
		Unsynced:  report.UnsyncedEntries(result.Report),
		Added:     result.Added,
		Removed:   result.Removed,
	}
}

func hostOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}
