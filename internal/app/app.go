package app

import (
	"context"
	"fmt"
	"time"

	"deep-research/config"
	"deep-research/internal/api/healthcheck"
	apireport "deep-research/internal/api/report"
	"deep-research/internal/core/chunking"
	"deep-research/internal/core/extract"
	"deep-research/internal/core/llm"
	"deep-research/internal/core/prompt"
	corereport "deep-research/internal/core/report"
	"deep-research/internal/database"
	reportsvc "deep-research/internal/services/report"
	"deep-research/internal/store"
	"deep-research/pkg/logger"
	s3client "deep-research/pkg/s3"
)

const (
	BackendLocal    = "local"
	BackendS3       = "s3"
	BackendDatabase = "database"

	uploadPrefix = "uploads/"
)

// App holds the components built from one configuration.
type App struct {
	Config   config.Config
	Budget   chunking.ChunkBudget
	Prompts  *prompt.Store
	Pipeline *reportsvc.Pipeline
	Service  *reportsvc.Service
	Store    store.Store
	Stager   apireport.Stager
	Health   *healthcheck.Handler
}

// New computes the chunk budget once and wires every component for cfg.
// Configuration errors are returned here so callers can fail at startup.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	budgetIn := chunking.BudgetInput{
		ContextLength:  cfg.LLM.ContextLength,
		OutputReserve:  cfg.LLM.MaxTokensPerChunk,
		MaxChunkSize:   cfg.Chunking.MaxChunkSize,
		MaxOverlapSize: cfg.Chunking.OverlapSize,
	}
	budget, err := chunking.CalculateBudget(budgetIn)
	if err != nil {
		return nil, err
	}
	segmenter, err := chunking.NewSegmenter(cfg.Chunking.Strategy, budget)
	if err != nil {
		return nil, err
	}

	var tokens chunking.TokenCounter
	if cfg.Chunking.Encoding != "" {
		if tokens, err = chunking.NewTokenCounter(cfg.Chunking.Encoding); err != nil {
			return nil, err
		}
	}

	prompts, err := prompt.NewStore(cfg.Prompt.Dir)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	renderer, err := prompt.NewRenderer(prompts, cfg.Prompt.Version, cfg.LLM.MaxTokensPerChunk)
	if err != nil {
		return nil, err
	}

	modelCfg := llm.ModelConfig{
		Name:              cfg.LLM.Model,
		ContextLength:     cfg.LLM.ContextLength,
		MaxTokensPerChunk: cfg.LLM.MaxTokensPerChunk,
		Temperature:       cfg.LLM.Temperature,
		Timeout:           time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	}
	if cfg.LLM.Key == "" {
		logger.WithModule(config.ModuleLLM).Warn("llm.key is empty; model calls will fail")
	}

	pipeline := reportsvc.NewPipeline(reportsvc.PipelineDeps{
		Cleaner:         extract.NewTextCleaner(),
		Segmenter:       segmenter,
		Renderer:        renderer,
		Model:           llm.NewOpenAIClient(cfg.LLM.Key, cfg.LLM.BaseURL, cfg.LLM.Model),
		ModelConfig:     modelCfg,
		Budget:          budget,
		Assembler:       corereport.NewAssembler(cfg.Report.Title),
		Tokens:          tokens,
		AvailableTokens: budgetIn.AvailableTokens(),
	})

	a := &App{
		Config:   cfg,
		Budget:   budget,
		Prompts:  prompts,
		Pipeline: pipeline,
	}

	var objects extract.ObjectGetter
	var dbPing, s3Ping healthcheck.Pinger
	switch cfg.Storage.Backend {
	case BackendLocal:
		fs, err := store.NewFileStore(cfg.Storage.ReportsDir)
		if err != nil {
			return nil, err
		}
		a.Store = fs
		a.Stager = apireport.NewLocalStager(cfg.Storage.UploadDir)
	case BackendS3:
		client, err := s3client.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		if err := s3client.EnsureBucket(ctx, client, cfg.S3.Bucket); err != nil {
			return nil, err
		}
		s3s := store.NewS3Store(client, cfg.S3.Bucket, cfg.S3.Prefix)
		a.Store = s3s
		a.Stager = apireport.NewS3Stager(client, cfg.S3.Bucket, uploadPrefix)
		objects = client
		s3Ping = s3s.Ping
	case BackendDatabase:
		db, err := database.Init(database.SettingsFromConfig(cfg))
		if err != nil {
			return nil, err
		}
		a.Store = store.NewDBStore(db)
		a.Stager = apireport.NewLocalStager(cfg.Storage.UploadDir)
		dbPing = database.Ping
	default:
		return nil, fmt.Errorf("%v: unknown storage backend %q", config.ModuleSetting, cfg.Storage.Backend)
	}

	a.Service = reportsvc.NewService(pipeline, extract.NewFileExtractor(), objects, a.Store)
	a.Health = healthcheck.NewHandler(dbPing, s3Ping)

	logger.WithModule(config.ModuleServer).WithFields(map[string]interface{}{
		"backend":      cfg.Storage.Backend,
		"strategy":     segmenter.Name(),
		"chunk_size":   budget.MaxChunkChars(),
		"overlap_size": budget.OverlapChars(),
		"model":        modelCfg.Name,
		"prompt":       renderer.Version(),
	}).Info("application wired")
	return a, nil
}
