package bootstrap

import (
	"context"
	"fmt"

	"github.com/Arctuition/documenso/internal/config"
	"github.com/Arctuition/documenso/internal/core/ports"
	"github.com/Arctuition/documenso/internal/core/usecase"
	"github.com/Arctuition/documenso/internal/infrastructure/queue/nats"
	"github.com/Arctuition/documenso/internal/infrastructure/report/excel"
	"github.com/Arctuition/documenso/internal/infrastructure/repository/postgres"
	"github.com/Arctuition/documenso/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Store     ports.SigningStore
	Outbox    ports.OutboxStore
	Publisher ports.EventPublisher

	Sessions  ports.SessionLoader
	Signer    ports.FieldSigner
	Unsigner  ports.FieldUnsigner
	Completer ports.DocumentCompleter
	Reporter  ports.AuditReporter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewSigningRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	outboxRepo := postgres.NewOutboxRepository(db)

	executorCfg := resilience.DefaultConfig()
	executorCfg.BreakerEnabled = cfg.BreakerEnabled
	executor := resilience.NewExecutor(executorCfg)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubjectPrefix, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init event queue: %w", err)
	}

	signUC := usecase.NewSignFieldUseCase(repo)
	unsignUC := usecase.NewUnsignFieldUseCase(repo)
	autoSignUC := usecase.NewAutoSignUseCase(repo, signUC)
	sessionUC := usecase.NewLoadSessionUseCase(repo, autoSignUC)
	completeUC := usecase.NewCompleteDocumentUseCase(repo)
	reportUC := usecase.NewAuditReportUseCase(repo, excel.NewExporter())

	return &App{
		Config: cfg,

		Store:     repo,
		Outbox:    outboxRepo,
		Publisher: queue,

		Sessions:  sessionUC,
		Signer:    signUC,
		Unsigner:  unsignUC,
		Completer: completeUC,
		Reporter:  reportUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
