package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tiergate/internal/application"
	"tiergate/internal/delivery/discord"
	"tiergate/internal/delivery/gameserver"
	"tiergate/internal/repository"
	"tiergate/pkg/config"
	"tiergate/pkg/logger"
	service "tiergate/pkg/services"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func main() {
	_ = godotenv.Load()

	cfg := config.Config{}
	if err := config.ReadEnvConfig(&cfg); err != nil {
		panic(err)
	}

	log := logger.NewLogger(&logger.Config{Level: cfg.LogLevel})

	if err := run(&cfg, log); err != nil {
		log.Error("%s", err.Error())
		os.Exit(1)
	}
	log.Info("Stopped")
}

// run owns every resource so deferred cleanup happens before main exits.
func run(cfg *config.Config, log *logger.Logger) error {
	db, err := repository.NewPostgresDB(&cfg.Repo)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	defer db.Close()

	log.Info("Running migrations...")
	version, err := repository.RunMigrations(db, migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Migrations applied, schema version %d", version)

	repos := repository.NewRepository(&cfg.Repo, db)

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to init discord session: %w", err)
	}

	oracle := discord.NewRoleOracle(session, cfg.DiscordGuildID, cfg.TierThreeRoleID)
	services := application.NewService(repos, oracle, cfg.OracleTimeout, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, cfg.Repo.DBName),
	)

	bot := discord.NewBot(session, cfg.DiscordGuildID, cfg.AdminUserIDs, services, oracle, log)
	api := gameserver.NewServer(&cfg.HTTP, services, repos, registry, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	manager := service.NewManager(log)
	manager.AddService(bot, api)
	if err := manager.Run(ctx); err != nil {
		return fmt.Errorf("service error: %w", err)
	}
	return nil
}
