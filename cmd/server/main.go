package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/votechain/backend/internal/adapters/handler/http"
	"github.com/votechain/backend/internal/adapters/ledger/ethereum"
	"github.com/votechain/backend/internal/adapters/repository/postgres"
	"github.com/votechain/backend/internal/config"
	"github.com/votechain/backend/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Postgres.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	gateway, err := ethereum.Dial(ctx,
		cfg.Ledger.RPCURL,
		common.HexToAddress(cfg.Ledger.ContractAddress),
		cfg.Ledger.AdminKey,
		cfg.Ledger.ChainID,
		logger.With("component", "ledger-gateway"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer gateway.Close()

	voterRepo := postgres.NewVoterRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)

	archiveService := services.NewArchiveService(gateway, snapshotRepo,
		logger.With("component", "archive"))
	voteService := services.NewVoteService(gateway, voterRepo, voteRepo,
		logger.With("component", "votes"))
	voterService := services.NewVoterService(gateway, voterRepo,
		logger.With("component", "voters"))
	electionService := services.NewElectionService(gateway, voterRepo, archiveService,
		logger.With("component", "election"))
	historyService := services.NewHistoryService(snapshotRepo,
		logger.With("component", "history"))

	registry := prometheus.NewRegistry()
	events := ethereum.NewEventSource(gateway, logger.With("component", "events"))
	monitor := services.NewMonitor(events, gateway, voterRepo, voteRepo, archiveService,
		logger.With("component", "monitor"), registry)

	if err := monitor.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer monitor.Stop()

	handler := http.NewHandler(
		http.NewVoteHandler(voteService),
		http.NewVoterHandler(voterService),
		http.NewElectionHandler(electionService),
		http.NewHistoryHandler(historyService),
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)
	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	logger.Info("server listening", "addr", cfg.HTTPAddr)

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
