package metric

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"

	"calendar/src-server/utils"
)

type Metrics struct {
	QueryDuration *prometheus.HistogramVec
	QueryErrors   *prometheus.CounterVec
	EmptyRead     prometheus.Gauge
}

// New builds the collectors and registers them with reg. Collectors already
// registered by an earlier call are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "calendar_database_query_duration_microseconds",
			Help:    "The latency of database queries in microseconds",
			Buckets: prometheus.ExponentialBuckets(50, 4, 8),
		}, []string{"operation"}),
		QueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calendar_database_query_errors_total",
			Help: "The number of failed database queries",
		}, []string{"operation"}),
		EmptyRead: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "calendar_database_empty_read_microsec",
			Help: "The latency of an empty database read in microseconds",
		}),
	}

	var err error
	if m.QueryDuration, err = register(reg, m.QueryDuration); err != nil {
		return nil, err
	}
	if m.QueryErrors, err = register(reg, m.QueryErrors); err != nil {
		return nil, err
	}
	if m.EmptyRead, err = register(reg, m.EmptyRead); err != nil {
		return nil, err
	}
	m.EmptyRead.Set(0)
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// QueryHook records the latency and failures of every query bun runs.
type QueryHook struct {
	m *Metrics
}

var _ bun.QueryHook = (*QueryHook)(nil)

func (m *Metrics) QueryHook() *QueryHook {
	return &QueryHook{m: m}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	op := event.Operation()
	h.m.QueryDuration.WithLabelValues(op).Observe(float64(time.Since(event.StartTime).Microseconds()))
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.m.QueryErrors.WithLabelValues(op).Inc()
	}
}

// StartProbe measures an empty read every interval and stores the latency in
// gauge until ctx is done. It blocks; run it in its own goroutine.
func StartProbe(ctx context.Context, db bun.IDB, interval time.Duration, gauge prometheus.Gauge) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			latency, err := database(ctx, db)
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("can't get database latency", "error", err)
				}
				continue
			}
			gauge.Set(float64(latency.Microseconds()))
		}
	}
}

// Init installs the query hook on the app database and starts the probe; both
// stop with the app's graceful shutdown.
func Init(as *utils.AppState, reg prometheus.Registerer) (*Metrics, error) {
	m, err := New(reg)
	if err != nil {
		return nil, err
	}
	as.BunDB.AddQueryHook(m.QueryHook())

	ctx, cancel := context.WithCancel(context.Background())
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		<-gracefulShutdownCh
		cancel()
	}()
	go StartProbe(ctx, as.BunDB, as.Config.GetMetricCollectionInterval(), m.EmptyRead)

	slog.Debug("metrics registered", "interval", as.Config.GetMetricCollectionInterval())
	return m, nil
}
