package main

import (
	"context"

	"github.com/kbukum/huddle/api"
	"github.com/kbukum/huddle/audio"
	"github.com/kbukum/huddle/bootstrap"
	"github.com/kbukum/huddle/component"
	"github.com/kbukum/huddle/database"
	"github.com/kbukum/huddle/insight"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/meeting"
	"github.com/kbukum/huddle/observability"
	"github.com/kbukum/huddle/redis"
	"github.com/kbukum/huddle/server"
	"github.com/kbukum/huddle/session"
	"github.com/kbukum/huddle/storage"
	"github.com/kbukum/huddle/tasks"

	_ "github.com/kbukum/huddle/storage/local"
	_ "github.com/kbukum/huddle/storage/s3"
)

const insightCachePrefix = "insight"

// infra holds the components whose clients exist only after Start.
type infra struct {
	metrics  *observability.Metrics
	db       *database.Component
	redis    *redis.Component
	storage  *storage.Component
	queue    *tasks.Queue
	sessions *session.Registry
	server   *server.Server
}

// setup registers infrastructure components and the configure step that
// builds the business layer on top of them.
func setup(app *bootstrap.App[*Config]) (*infra, error) {
	cfg := app.Cfg
	log := app.Logger
	metrics := observability.NewMetrics(serviceName)

	in := &infra{
		metrics:  metrics,
		db:       database.NewComponent(cfg.Database, log).WithAutoMigrate(meeting.Models()...),
		redis:    redis.NewComponent(cfg.Redis, log),
		storage:  storage.NewComponent(cfg.Storage, log),
		queue:    tasks.NewQueue(cfg.Tasks, log, tasks.WithMetrics(metrics)),
		sessions: session.NewRegistry(log, session.WithMetrics(metrics)),
	}
	for _, c := range []component.Component{
		observability.NewTracerComponent(cfg.Tracing, cfg.Name, cfg.Version),
		in.db, in.redis, in.storage, in.queue, in.sessions,
	} {
		if err := app.RegisterComponent(c); err != nil {
			return nil, err
		}
	}

	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
		return in.configure(a)
	})
	app.OnStop(func(ctx context.Context) error {
		if err := in.queue.Drain(ctx); err != nil {
			log.Warn("Task queue not drained before shutdown", logger.Fields(
				logger.FieldError, err.Error(),
				"pending", in.queue.Pending(),
				"active", in.queue.Active(),
			))
		}
		return nil
	})
	return in, nil
}

// configure builds repositories, services and routes once the database,
// cache and storage clients exist, then registers the pipeline and the HTTP
// server so they start after wiring.
func (in *infra) configure(app *bootstrap.App[*Config]) error {
	cfg := app.Cfg
	log := app.Logger

	stt, err := newTranscriber(cfg, log, in.metrics)
	if err != nil {
		return err
	}
	completion, err := newLLM(cfg, log, in.metrics)
	if err != nil {
		return err
	}

	repo := meeting.NewRepository(in.db.DB())
	meetings := meeting.NewService(repo, cfg.Meeting, log)

	acc := audio.NewAccumulator(cfg.Audio, log)
	pipelineOpts := []audio.PipelineOption{
		audio.WithSessions(in.sessions),
		audio.WithMetrics(in.metrics),
	}
	if archive := in.storage.Storage(); archive != nil {
		pipelineOpts = append(pipelineOpts, audio.WithArchive(archive))
	}
	pipeline := audio.NewPipeline(cfg.Audio, acc, audio.NewTranscoder(cfg.Audio, log),
		stt, repo, in.queue, log, pipelineOpts...)

	insightOpts := []insight.Option{
		insight.WithSessions(in.sessions),
		insight.WithFlusher(pipeline),
	}
	if client := in.redis.Client(); client != nil {
		cache := redis.NewTypedStore[meeting.Insight](client, insightCachePrefix)
		insightOpts = append(insightOpts, insight.WithCache(cache, cfg.Redis.TTL()))
	}
	insights := insight.NewService(repo, insight.NewExtractor(completion, log, in.metrics),
		in.queue, log, insightOpts...)
	meetings.SetFinalizer(insights)

	srv := server.New(cfg.Server, log)
	srv.UseMetrics(in.metrics)
	srv.RegisterDefaultEndpoints(cfg.Name, app.Components.HealthAll)
	srv.OnShutdown(func() {
		if err := in.sessions.Stop(context.Background()); err != nil {
			log.Warn("Closing subscribers failed", logger.Fields(logger.FieldError, err.Error()))
		}
	})

	api.NewHandler(api.Deps{
		Meetings: meetings,
		Pipeline: pipeline,
		Insights: insights,
		Queue:    in.queue,
		Sessions: in.sessions,
	}, cfg.API, log).Register(srv.GinEngine())

	for _, r := range srv.GinEngine().Routes() {
		app.Summary.TrackRoute(r.Method, r.Path)
	}
	app.Summary.TrackBusiness("meetings")
	app.Summary.TrackBusiness("insights")
	in.server = srv

	if err := app.RegisterComponent(pipeline); err != nil {
		return err
	}
	return app.RegisterComponent(server.NewComponent(srv))
}
