package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	indexhandler "prisonersearch/internal/index/handler"
	"prisonersearch/internal/index/listener"
	indexmetrics "prisonersearch/internal/index/metrics"
	indexmodels "prisonersearch/internal/index/models"
	indexservice "prisonersearch/internal/index/service"
	"prisonersearch/internal/index/store/status"
	"prisonersearch/internal/platform/config"
	"prisonersearch/internal/platform/kafka"
	"prisonersearch/internal/platform/postgres"
	platformredis "prisonersearch/internal/platform/redis"
	"prisonersearch/internal/platform/telemetry"
	"prisonersearch/internal/prisoner/adapters/clients"
	"prisonersearch/internal/prisoner/adapters/events"
	"prisonersearch/internal/prisoner/adapters/search"
	"prisonersearch/internal/prisoner/diff"
	prisonermetrics "prisonersearch/internal/prisoner/metrics"
	"prisonersearch/internal/prisoner/ports"
	"prisonersearch/internal/prisoner/reconcile"
	prisonerservice "prisonersearch/internal/prisoner/service"
	"prisonersearch/internal/prisoner/store/difference"
	"prisonersearch/internal/prisoner/store/hash"
	"prisonersearch/internal/prisoner/store/outbox"
	"prisonersearch/internal/queue"
	"prisonersearch/pkg/platform/circuit"
	"prisonersearch/pkg/platform/tx"
)

// indexQueue is a queue transport that also keeps a dead-letter queue.
type indexQueue interface {
	queue.Queue
	queue.DeadLetters
}

type application struct {
	services indexhandler.Services
	checks   map[string]indexhandler.HealthCheck
	worker   *queue.Worker
	sweeper  *diff.RetentionSweeper
	relay    *diff.OutboxRelay
	inbound  *events.Listener
	closers  []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func wire(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *application, err error) {
	app := &application{checks: map[string]indexhandler.HealthCheck{}}
	defer func() {
		if err != nil {
			app.close()
		}
	}()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	stores, err := openStores(ctx, db, log)
	if err != nil {
		return nil, err
	}
	if db != nil {
		app.closers = append(app.closers, func() { _ = db.Close() })
		app.checks["postgres"] = db.PingContext
	}

	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	var q indexQueue
	if rdb != nil {
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		app.checks["redis"] = rdb.Health
		q = queue.NewRedis(rdb.Client, cfg.Index.QueueName, queueOptions(cfg.Index))
	} else {
		log.Info("no redis configured, using in-memory index queue")
		q = queue.NewInMemory(queueOptions(cfg.Index))
	}

	documents, err := openDocuments(cfg.Search, log)
	if err != nil {
		return nil, err
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return nil, err
	}
	var publisher ports.EventPublisher = events.NewRecorder(log)
	if producer != nil {
		app.closers = append(app.closers, producer.Close)
		if err := kafka.EnsureTopics(ctx, producer, 1, log, cfg.Kafka.EventsTopic); err != nil {
			return nil, err
		}
		publisher = events.NewKafkaPublisher(producer, cfg.Kafka.EventsTopic, log)
	}

	tracker := telemetry.NewTracker(telemetry.NewRecorder(log), log)
	indexMetrics := indexmetrics.New()
	prisonerMetrics := prisonermetrics.New()

	lifecycle := indexservice.NewLifecycle(stores.status,
		indexservice.WithLifecycleLogger(log),
		indexservice.WithLifecycleMetrics(indexMetrics),
	)
	if _, err := lifecycle.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap index status: %w", err)
	}
	for _, slot := range []indexmodels.Slot{indexmodels.SlotA, indexmodels.SlotB} {
		if err := documents.EnsureIndex(ctx, slot); err != nil {
			return nil, fmt.Errorf("ensure index %s: %w", slot, err)
		}
	}

	engine := diff.New(stores.hashes, stores.differences, stores.outbox, publisher,
		diff.WithTransactions(stores.tx),
		diff.WithLogger(log),
		diff.WithMetrics(prisonerMetrics),
		diff.WithTelemetry(tracker),
	)

	prison := clients.NewPrisonAPI(clientConfig(cfg.Clients, cfg.Clients.PrisonAPIURL), clientOptions("prison-api", log)...)
	synchroniser := prisonerservice.NewSynchroniser(prison, enrichers(cfg.Clients, log), documents, engine, lifecycle,
		prisonerservice.WithLogger(log),
		prisonerservice.WithMetrics(prisonerMetrics),
	)

	pipelineOpts := []indexservice.Option{
		indexservice.WithLogger(log),
		indexservice.WithMetrics(indexMetrics),
		indexservice.WithTelemetry(tracker),
		indexservice.WithPageSize(cfg.Index.PageSize),
	}
	build := indexservice.NewBuildService(lifecycle, q, prison, synchroniser, documents, pipelineOpts...)
	if _, err := build.ConvergeAlias(ctx); err != nil {
		return nil, fmt.Errorf("converge live alias: %w", err)
	}
	refresh := indexservice.NewRefreshService(lifecycle, q, prison, synchroniser, pipelineOpts...)

	router := queue.NewRouter(log)
	listener.New(build, refresh, log).Register(router)
	app.worker = queue.NewWorker(cfg.Index.QueueName, q, router,
		queue.WithConcurrency(cfg.Index.Workers),
		queue.WithLogger(log),
	)

	consumer, err := kafka.NewConsumer(cfg.Kafka)
	if err != nil {
		return nil, err
	}
	if consumer != nil {
		app.closers = append(app.closers, consumer.Close)
		app.inbound = events.NewListener(consumer, synchroniser, refreshFallback(q), log)
	} else {
		log.Info("no kafka brokers configured, inbound change events disabled")
	}

	app.sweeper = diff.NewRetentionSweeper(engine, cfg.Index.DifferenceRetention, cfg.Index.SweepInterval, log)
	app.relay = diff.NewOutboxRelay(engine, cfg.Index.OutboxRelayInterval, log)

	reconciler := reconcile.New(documents, prison, lifecycle,
		reconcile.WithLogger(log),
		reconcile.WithMetrics(prisonerMetrics),
		reconcile.WithTelemetry(tracker),
		reconcile.WithScroll(cfg.Index.ScrollBatchSize, cfg.Index.ScrollKeepAlive),
		reconcile.WithSourcePageSize(cfg.Index.PageSize),
	)

	app.services = indexhandler.Services{
		Builder:     build,
		Refresher:   refresh,
		Status:      lifecycle,
		Indexer:     synchroniser,
		Reconciler:  reconciler,
		DeadLetters: q,
		History:     engine,
	}
	return app, nil
}

// durableStores are the stores the engine writes in one transaction, plus
// the index status row.
type durableStores struct {
	status      indexservice.StatusStore
	hashes      diff.HashStore
	differences diff.DifferenceStore
	outbox      diff.Outbox
	tx          tx.Runner
}

func openStores(ctx context.Context, db *sql.DB, log *slog.Logger) (durableStores, error) {
	if db == nil {
		log.Info("no database configured, using in-memory stores")
		return durableStores{
			status:      status.NewInMemory(),
			hashes:      hash.NewInMemory(),
			differences: difference.NewInMemory(),
			outbox:      outbox.NewInMemory(),
			tx:          tx.NewLocal(),
		}, nil
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return durableStores{}, err
	}
	return durableStores{
		status:      status.NewPostgres(db),
		hashes:      hash.NewPostgres(db),
		differences: difference.NewPostgres(db),
		outbox:      outbox.NewPostgres(db),
		tx:          tx.NewSQL(db),
	}, nil
}

func openDocuments(cfg config.SearchConfig, log *slog.Logger) (ports.DocumentStore, error) {
	if cfg.URL == "" {
		log.Info("no search cluster configured, using in-memory documents")
		return search.NewInMemory(), nil
	}
	client, err := search.NewClient([]string{cfg.URL}, cfg.Username, cfg.Password)
	if err != nil {
		return nil, err
	}
	return search.NewOpenSearch(client, cfg.IndexPrefix), nil
}

func queueOptions(cfg config.IndexConfig) queue.Options {
	return queue.Options{
		VisibilityTimeout: cfg.VisibilityTimeout,
		MaxReceives:       cfg.MaxReceives,
	}
}

func clientConfig(cfg config.ClientsConfig, baseURL string) clients.Config {
	return clients.Config{BaseURL: baseURL, Timeout: cfg.Timeout, Token: cfg.Token}
}

// clientOptions gives every upstream its own breaker so one outage cannot
// open the circuit on the others.
func clientOptions(name string, log *slog.Logger) []clients.Option {
	return []clients.Option{
		clients.WithBreaker(circuit.New(name)),
		clients.WithLogger(log),
	}
}

// enrichers builds a client for every configured enrichment API. Unset URLs
// leave the client nil so the field keeps its indexed value.
func enrichers(cfg config.ClientsConfig, log *slog.Logger) prisonerservice.Enrichers {
	var e prisonerservice.Enrichers
	if cfg.IncentivesAPIURL != "" {
		e.Incentives = clients.NewIncentivesAPI(clientConfig(cfg, cfg.IncentivesAPIURL), clientOptions("incentives-api", log)...)
	}
	if cfg.RestrictedPatientsAPIURL != "" {
		e.RestrictedPatients = clients.NewRestrictedPatientsAPI(clientConfig(cfg, cfg.RestrictedPatientsAPIURL), clientOptions("restricted-patients-api", log)...)
	}
	if cfg.AlertsAPIURL != "" {
		e.Alerts = clients.NewAlertsAPI(clientConfig(cfg, cfg.AlertsAPIURL), clientOptions("alerts-api", log)...)
	}
	if cfg.ComplexityOfNeedAPIURL != "" {
		e.Complexity = clients.NewComplexityOfNeedAPI(clientConfig(cfg, cfg.ComplexityOfNeedAPIURL), clientOptions("complexity-of-need-api", log)...)
	}
	return e
}

// refreshFallback hands a change that could not be applied in place to the
// index queue as a full refresh, so it is retried by the queue's redrive.
func refreshFallback(q queue.Queue) events.Fallback {
	return func(ctx context.Context, prisonerNumber string) error {
		msg, err := queue.NewMessage(indexmodels.MsgRefreshPrisoner, indexmodels.RefreshPrisonerRequest{PrisonerNumber: prisonerNumber})
		if err != nil {
			return err
		}
		_, err = q.Send(ctx, msg)
		return err
	}
}
