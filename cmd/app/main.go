package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"outbound-email-engine/internal/config"
	"outbound-email-engine/internal/domain/model"
	aiAdapters "outbound-email-engine/internal/infra/adapters/ai"
	"outbound-email-engine/internal/infra/contacts"
	httpadmin "outbound-email-engine/internal/infra/http"
	"outbound-email-engine/internal/infra/logging"
	"outbound-email-engine/internal/infra/sink"
	"outbound-email-engine/internal/usecase"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// .env is optional; it feeds the env overrides in config.LoadConfig
	_ = godotenv.Load()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logging)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	// ---- Admin server (live /metrics while a batch run polls) ----
	var admin *httpadmin.Server
	if cfg.Admin.Port > 0 {
		admin = httpadmin.NewServer(cfg.Admin.Port, logger)
		go func() {
			if err := admin.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("admin server stopped")
			}
		}()
	}

	// ---- Contact source ----
	source := contacts.NewCSVContactSource(cfg.Outreach.CSVPath, contacts.Filters{
		ExcludeUnsubscribed:   cfg.Outreach.Filters.Unsubscribed(),
		ExcludeBlockedDomains: cfg.Outreach.Filters.BlockedDomains(),
		ExcludeContacted:      cfg.Outreach.Filters.Contacted(),
	}, logger)

	// ---- Completion + batch adapters ----
	aiAdapter, err := aiAdapters.NewOpenAIAdapter(&cfg.AI)
	if err != nil {
		log.Fatalf("openai adapter: %v", err)
	}
	batchAPI, err := aiAdapters.NewOpenAIBatchAPI(&cfg.AI, cfg.Outreach.CompletionWindow)
	if err != nil {
		log.Fatalf("openai batch api: %v", err)
	}

	// ---- Use cases ----
	runner := usecase.NewBatchRunner(batchAPI, cfg.Outreach.PollInterval, logger)
	dispatcher := usecase.NewDispatchUseCase(aiAdapter, runner, cfg.Outreach.BatchThreshold, logger)
	resultSink := sink.NewCSVResultSink(cfg.Outreach.OutputDir, logger)

	// ---- Run ----
	all, err := source.Load(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("loading contact database failed")
	}
	prospects, leads := model.SplitCohorts(all)
	logger.Info().
		Int("prospects", len(prospects)).
		Int("leads", len(leads)).
		Int("limit_per_cohort", cfg.Outreach.Limit).
		Str("model", cfg.AI.Model).
		Msg("starting outbound run")

	var combined []model.OutputRow
	totalCost := 0.0

	for _, cohort := range []struct {
		name     model.ContactType
		contacts []model.ContactRecord
	}{
		{model.ContactTypeProspect, prospects},
		{model.ContactTypeLead, leads},
	} {
		if len(cohort.contacts) == 0 {
			continue
		}
		picked := cohort.contacts
		if len(picked) > cfg.Outreach.Limit {
			picked = picked[:cfg.Outreach.Limit]
		}

		rows, cost, err := dispatcher.Dispatch(ctx, cohort.name, picked)
		if err != nil {
			// Nothing has been committed; the run is safe to re-execute.
			logger.Fatal().Err(err).
				Str("cohort", string(cohort.name)).
				Int("rows_completed", len(rows)).
				Float64("accrued_cost_usd", cost).
				Msg("outbound run aborted")
		}

		path, err := resultSink.Write(ctx, fmt.Sprintf("generated_emails_%ss", cohort.name), rows)
		if err != nil {
			logger.Fatal().Err(err).Str("cohort", string(cohort.name)).Msg("writing results failed")
		}
		logger.Info().
			Str("cohort", string(cohort.name)).
			Int("emails", len(rows)).
			Str("path", path).
			Str("cost", fmt.Sprintf("$%.4f", cost)).
			Msg("cohort finished")

		combined = append(combined, rows...)
		totalCost = model.RoundCost(totalCost + cost)
	}

	if len(combined) > 0 {
		path, err := resultSink.Write(ctx, "generated_emails", combined)
		if err != nil {
			logger.Fatal().Err(err).Msg("writing combined results failed")
		}
		logger.Info().Str("path", path).Int("emails", len(combined)).Msg("combined results written")
	}
	logger.Info().Str("total_cost", fmt.Sprintf("$%.4f", totalCost)).Msg("outbound run complete")

	if admin != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = admin.Shutdown(shutdownCtx)
	}
}
