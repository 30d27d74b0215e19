package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticketbot/internal/api/http"
	"github.com/spec-kit/ticketbot/internal/api/http/handlers"
	"github.com/spec-kit/ticketbot/internal/api/interactions"
	"github.com/spec-kit/ticketbot/internal/auth"
	"github.com/spec-kit/ticketbot/internal/config"
	"github.com/spec-kit/ticketbot/internal/events"
	"github.com/spec-kit/ticketbot/internal/infra"
	"github.com/spec-kit/ticketbot/internal/observability"
	"github.com/spec-kit/ticketbot/internal/persistence"
	"github.com/spec-kit/ticketbot/internal/platform/discord"
	"github.com/spec-kit/ticketbot/internal/repository"
	"github.com/spec-kit/ticketbot/internal/service"
	"github.com/spec-kit/ticketbot/internal/worker"
)

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, errHelp) {
			return
		}
		log.Fatalf("invalid flags: %v", err)
	}

	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}
	cfg, err := config.Load(envFiles...)
	if opts.logLevel != "" && cfg != nil {
		cfg.Logger.Level = opts.logLevel
	}

	if opts.issueOpsToken != "" {
		if cfg == nil {
			log.Fatalf("failed to load config: %v", err)
		}
		os.Exit(issueOpsToken(cfg.Ops, opts.issueOpsToken))
	}

	if errors.Is(err, config.ErrMissingToken) {
		fmt.Fprintln(os.Stderr, "ERROR: DISCORD_BOT_TOKEN env var not set")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, opts, logger); err != nil {
		logger.Error("bot stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, opts options, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Enabled() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		return err
	}
	client := discord.NewClient(session)
	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	scheduler := worker.NewCloseScheduler(clock, logger)

	tickets := service.NewTicketService(service.TicketDependencies{
		Platform:   client,
		Scheduler:  scheduler,
		Dispatcher: dispatcher,
		Clock:      clock,
		Logger:     logger,
	}, service.TicketSettings{
		CategoryID:    cfg.Discord.TicketCategoryID,
		StaffRoleID:   cfg.Discord.StaffRoleID,
		StaffRoleName: cfg.Branding.StaffRoleName,
		BrandName:     cfg.Branding.Name,
		PanelFooter:   cfg.Branding.PanelFooter,
	})
	broadcasts := service.NewBroadcastService(service.BroadcastDependencies{
		Platform:   client,
		Fetcher:    infra.NewAttachmentFetcher(cfg.Discord.AttachmentFetchTimeout),
		Dispatcher: dispatcher,
		Clock:      clock,
		Logger:     logger,
	}, service.BroadcastSettings{
		ChangelogChannelID: cfg.Discord.ChangelogChannelID,
		StaffRoleID:        cfg.Discord.StaffRoleID,
		StaffRoleName:      cfg.Branding.StaffRoleName,
		ProductName:        cfg.Branding.Product,
	})

	var audit *service.AuditService
	registrars := []worker.HandlerRegistrar{
		service.NewNotificationService(dispatcher, client, clock, logger, cfg.Discord.TicketLogChannelID),
	}
	if pg.Enabled() {
		audit = service.NewAuditService(repository.NewTicketEventRepository(pg.PoolHandle()), dispatcher, logger)
		registrars = append(registrars, audit)
	}
	if redis.Enabled() {
		registrars = append(registrars, persistence.NewEventStream(redis.Client, cfg.Redis.EventStream, dispatcher))
	}
	worker.StartNotificationWorker(registrars...)

	router := interactions.NewRouter(metrics, logger)
	interactions.RegisterRoutes(router, interactions.RouteConfig{Tickets: tickets, Broadcasts: broadcasts})

	gateway := discord.NewGateway(session, discord.GatewayOptions{
		GuildID:         cfg.Discord.GuildID,
		SyncCommands:    !opts.skipCommandSync,
		Handler:         router,
		OnChannelDelete: scheduler.Cancel,
		Logger:          logger,
	})
	if err := gateway.Open(); err != nil {
		return err
	}
	defer gateway.Close() //nolint:errcheck

	logger.Info("ticketbot started",
		zap.String("guild_id", cfg.Discord.GuildID),
		zap.String("changelog_channel_id", cfg.Discord.ChangelogChannelID),
		zap.String("ticket_category_id", cfg.Discord.TicketCategoryID),
		zap.String("ticket_log_channel_id", cfg.Discord.TicketLogChannelID),
		zap.Bool("audit", pg.Enabled()),
		zap.Bool("event_stream", redis.Enabled()))

	var app *fiber.App
	if cfg.App.HTTPEnabled {
		app = fiber.New(fiber.Config{DisableStartupMessage: true})
		httptransport.RegisterMiddlewares(app, logger, metrics, 5*time.Second)

		var lister handlers.AuditLister
		if audit != nil {
			lister = audit
		}
		httptransport.RegisterRoutes(app, httptransport.RouteConfig{
			Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, gateway, pg, redis),
			Ops:           handlers.NewOpsHandler(metrics, lister),
			OpsMiddleware: auth.NewOpsMiddleware(auth.NewTokenManager(cfg.Ops.JWTSecret, cfg.Ops.TokenTTLMinutes)),
		})

		go func() {
			if err := app.Listen(cfg.App.Addr()); err != nil {
				logger.Error("fiber listen", zap.Error(err))
			}
		}()
	}

	waitForShutdown(logger)

	if app != nil {
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}
	return nil
}

func issueOpsToken(cfg config.OpsConfig, operator string) int {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTLMinutes)
	if !tokens.Enabled() {
		fmt.Fprintln(os.Stderr, "ERROR: OPS_JWT_SECRET env var not set")
		return 1
	}
	token, expires, err := tokens.GenerateToken(operator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expires.Format(time.RFC3339))
	return 0
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
