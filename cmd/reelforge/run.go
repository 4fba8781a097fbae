package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apiserver "github.com/reelforge/reelforge/internal/api_server"
	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/events"
	handlers "github.com/reelforge/reelforge/internal/handlers/v1alpha1"
	"github.com/reelforge/reelforge/internal/orchestrator"
	"github.com/reelforge/reelforge/internal/service"
	"github.com/reelforge/reelforge/internal/store"
	"github.com/reelforge/reelforge/pkg/log"
	"github.com/reelforge/reelforge/pkg/migrations"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the orchestrator and the api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Starting reelforge")
		defer zap.S().Info("reelforge stopped")

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalf("initializing data store: %v", err)
		}

		st := store.NewStore(db)
		defer st.Close()

		if cfg.Service.MigrationFolder != "" {
			if err := migrations.MigrateStore(db, cfg.Service.MigrationFolder); err != nil {
				zap.S().Fatalf("running sql migrations: %v", err)
			}
		} else {
			if err := st.InitialMigration(); err != nil {
				zap.S().Fatalf("running initial migration: %v", err)
			}
		}
		if err := st.Seed(); err != nil {
			zap.S().Fatalf("seeding the store: %v", err)
		}

		var writer events.Writer = &events.StdoutWriter{}
		if len(cfg.Service.Kafka.Brokers) > 0 {
			kw, err := events.NewKafkaWriter(cfg.Service.Kafka.Brokers, cfg.Service.Kafka.ClientID)
			if err != nil {
				zap.S().Fatalf("connecting to kafka: %v", err)
			}
			writer = kw
		}
		producerOpts := []events.ProducerOptions{}
		if cfg.Service.Kafka.Topic != "" {
			producerOpts = append(producerOpts, events.WithOutputTopic(cfg.Service.Kafka.Topic))
		}
		producer := events.NewEventProducer(writer, producerOpts...)
		defer func() { _ = producer.Close() }()

		registry := newRegistry(cfg)

		orch := orchestrator.NewOrchestrator(cfg, st, registry, producer)
		jobSrv := service.NewJobService(st, orch, producer)
		autopilot := orchestrator.NewAutopilot(st, jobSrv.CreateAutoJob)

		handler := handlers.NewServiceHandler(
			jobSrv,
			service.NewNicheService(st),
			service.NewAccountService(st),
			service.NewVoiceService(st),
			service.NewHealthService(st, registry, cfg),
		)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		go orch.Run(ctx)
		go autopilot.Run(ctx)

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Fatalf("creating listener: %s", err)
			}

			server := apiserver.New(cfg, handler, listener)
			if err := server.Run(ctx); err != nil {
				zap.S().Fatalf("Error running server: %s", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Fatalf("creating listener: %s", err)
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Fatalf("Error running metrics server: %s", err)
			}
		}()

		<-ctx.Done()
		return nil
	},
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
