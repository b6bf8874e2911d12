package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"fleetcheck/internal/bootstrap/config"
	"fleetcheck/internal/bootstrap/database"
	"fleetcheck/internal/bootstrap/logging"
	"fleetcheck/internal/errs"
	archiveinfra "fleetcheck/internal/infrastructure/archive"
	"fleetcheck/internal/infrastructure/kvstore"
	mailinfra "fleetcheck/internal/infrastructure/mail"
	metricsinfra "fleetcheck/internal/infrastructure/metrics"
	sqliterepo "fleetcheck/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "fleetcheck/internal/infrastructure/persistence/sqlite/uow"
	"fleetcheck/internal/infrastructure/scheduler"
	"fleetcheck/internal/ports"
	"fleetcheck/internal/usecase/compliance"
	"fleetcheck/internal/usecase/jobs"
	"fleetcheck/internal/usecase/notify"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewFleetRepository,
			fx.As(new(ports.FleetRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewUserRepository,
			fx.As(new(ports.UserDirectory)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			kvstore.NewGormStore,
			fx.As(new(ports.KVStore)),
		),
	),
	fx.Provide(metricsinfra.NewJobMetrics),
	fx.Provide(func(m *metricsinfra.JobMetrics) ports.JobMetrics { return m }),
	fx.Provide(provideMailer),
	fx.Provide(provideArchive),
	fx.Provide(compliance.NewService),
	fx.Provide(notify.NewDispatcher),
	fx.Provide(provideRunner),
	fx.Provide(provideScheduler),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideMailer(ctx context.Context, cfg config.Config) (ports.Mailer, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	if strings.EqualFold(cfg.Mail.Driver, "smtp") {
		m, err := mailinfra.NewSMTPMailer(mailinfra.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
		if err != nil {
			return nil, errs.Wrap(err, "create smtp mailer")
		}
		logging.Info(logCtx, "mailer configured", slog.String("driver", "smtp"), slog.String("host", cfg.Mail.Host))
		return m, nil
	}

	logging.Info(logCtx, "mailer configured", slog.String("driver", "log"))
	return mailinfra.NewLogMailer(), nil
}

func provideArchive(ctx context.Context, cfg config.Config) (ports.ReportArchive, error) {
	if !cfg.Archive.Enabled {
		return archiveinfra.Disabled{}, nil
	}

	a, err := archiveinfra.NewMinioArchive(archiveinfra.Config{
		Endpoint:        cfg.Archive.Endpoint,
		AccessKeyID:     cfg.Archive.AccessKeyID,
		SecretAccessKey: cfg.Archive.SecretAccessKey,
		UseSSL:          cfg.Archive.UseSSL,
		Bucket:          cfg.Archive.Bucket,
		Prefix:          cfg.Archive.Prefix,
	})
	if err != nil {
		return nil, errs.Wrap(err, "create report archive")
	}
	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx")),
		"report archive configured",
		slog.String("endpoint", cfg.Archive.Endpoint),
		slog.String("bucket", cfg.Archive.Bucket),
	)
	return a, nil
}

type runnerParams struct {
	fx.In

	Config     config.Config
	Repo       ports.FleetRepository
	Users      ports.UserDirectory
	Dispatcher *notify.Dispatcher
	Archive    ports.ReportArchive
	Metrics    ports.JobMetrics
}

func provideRunner(p runnerParams) *jobs.Runner {
	return jobs.NewRunner(p.Repo, p.Users, p.Dispatcher, p.Archive, p.Metrics, jobs.Config{
		AdminEmail: p.Config.Mail.AdminEmail,
	})
}

func provideScheduler(cfg config.Config, runner *jobs.Runner, store ports.KVStore) (*scheduler.Scheduler, error) {
	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, err
	}
	sweepHour, sweepMinute, err := scheduler.ParseClock(cfg.Scheduler.SweepAt)
	if err != nil {
		return nil, err
	}
	digestHour, digestMinute, err := scheduler.ParseClock(cfg.Scheduler.DigestAt)
	if err != nil {
		return nil, err
	}
	weekday, err := scheduler.ParseWeekday(cfg.Scheduler.DigestWeekday)
	if err != nil {
		return nil, err
	}

	return scheduler.New(scheduler.Config{
		Location: loc,
		Tick:     cfg.Scheduler.Tick,
		Schedules: []scheduler.Schedule{
			{Job: jobs.JobExpiredVehicles, Hour: sweepHour, Minute: sweepMinute},
			{Job: jobs.JobWeeklyReport, Weekly: true, Weekday: weekday, Hour: digestHour, Minute: digestMinute},
		},
	}, func(ctx context.Context, job string) error {
		_, err := runner.Run(ctx, job)
		return err
	}, store)
}
