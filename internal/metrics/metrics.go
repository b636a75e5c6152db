package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"
)

const pushJobName = "gitweb_sync_check"

// Metrics collected during one check run. Every helper accepts a nil *Metrics
// so components can be used without a registry.
type Metrics struct {
	fetchCounter      prometheus.Counter
	fetchErrorCounter prometheus.Counter
	unsyncedRepos     prometheus.Gauge
	addedRepos        prometheus.Gauge
	removedRepos      prometheus.Gauge
	checkDuration     prometheus.Gauge
	checkState        prometheus.Gauge
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		fetchCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitweb_sync_fetches_total",
			Help: "Total number of gitweb pages requested",
		}),
		fetchErrorCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitweb_sync_fetch_errors_total",
			Help: "Total number of gitweb page requests that failed",
		}),
		unsyncedRepos: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gitweb_sync_unsynced_repos",
			Help: "Number of repositories whose last change differs between master and slave",
		}),
		addedRepos: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gitweb_sync_added_repos",
			Help: "Number of repositories listed on master but not on slave",
		}),
		removedRepos: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gitweb_sync_removed_repos",
			Help: "Number of repositories listed on slave but not on master",
		}),
		checkDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gitweb_sync_check_duration_seconds",
			Help: "Duration of the last check in seconds",
		}),
		checkState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gitweb_sync_state",
			Help: "Result of the last check: 0 OK, 1 WARNING, 2 CRITICAL, 3 UNKNOWN",
		}),
	}

	reg.MustRegister(m.fetchCounter)
	reg.MustRegister(m.fetchErrorCounter)
	reg.MustRegister(m.unsyncedRepos)
	reg.MustRegister(m.addedRepos)
	reg.MustRegister(m.removedRepos)
	reg.MustRegister(m.checkDuration)
	reg.MustRegister(m.checkState)

	return m
}

func PageFetched(m *Metrics) {
	if m == nil {
		return
	}
	m.fetchCounter.Inc()
}

func PageFetchFailed(m *Metrics) {
	if m == nil {
		return
	}
	m.fetchErrorCounter.Inc()
}

func InventoryDiff(m *Metrics, added int, removed int) {
	if m == nil {
		return
	}
	m.addedRepos.Set(float64(added))
	m.removedRepos.Set(float64(removed))
}

func UnsyncedRepos(m *Metrics, n int) {
	if m == nil {
		return
	}
	m.unsyncedRepos.Set(float64(n))
}

func CheckState(m *Metrics, state int) {
	if m == nil {
		return
	}
	m.checkState.Set(float64(state))
}

func CheckDuration(m *Metrics, t time.Time) {
	if m == nil {
		return
	}
	m.checkDuration.Set(time.Since(t).Seconds())
}

func (m Metrics) FetchCounter() prometheus.Counter {
	return m.fetchCounter
}

func (m Metrics) FetchErrorCounter() prometheus.Counter {
	return m.fetchErrorCounter
}

func (m Metrics) UnsyncedReposGauge() prometheus.Gauge {
	return m.unsyncedRepos
}

func (m Metrics) AddedReposGauge() prometheus.Gauge {
	return m.addedRepos
}

func (m Metrics) RemovedReposGauge() prometheus.Gauge {
	return m.removedRepos
}

func (m Metrics) CheckDurationGauge() prometheus.Gauge {
	return m.checkDuration
}

func (m Metrics) CheckStateGauge() prometheus.Gauge {
	return m.checkState
}

// PushMetrics sends everything in reg to the Pushgateway once. The probe is
// short lived, so there is nothing for Prometheus to scrape.
func PushMetrics(reg *prometheus.Registry, pushGatewayUrl string, instance string) error {
	err := push.New(pushGatewayUrl, pushJobName).
		Grouping("instance", instance).
		Gatherer(reg).
		Push()
	if err != nil {
		return err
	}

	log.Debug().Str("pushgateway", pushGatewayUrl).Msg("Pushed metrics")
	return nil
}
