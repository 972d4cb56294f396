package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmorozov/french-tutor-assistant/internal/config"
	"github.com/dmorozov/french-tutor-assistant/internal/core/ports"
	"github.com/dmorozov/french-tutor-assistant/internal/core/usecase"
	"github.com/dmorozov/french-tutor-assistant/internal/infrastructure/chunking"
	"github.com/dmorozov/french-tutor-assistant/internal/infrastructure/extractor"
	"github.com/dmorozov/french-tutor-assistant/internal/infrastructure/extractor/pdfdoc"
	"github.com/dmorozov/french-tutor-assistant/internal/infrastructure/extractor/plaintext"
	"github.com/dmorozov/french-tutor-assistant/internal/infrastructure/extractor/spreadsheet"
	"github.com/dmorozov/french-tutor-assistant/internal/infrastructure/llm/ollama"
	"github.com/dmorozov/french-tutor-assistant/internal/infrastructure/queue/nats"
	"github.com/dmorozov/french-tutor-assistant/internal/infrastructure/repository/postgres"
	"github.com/dmorozov/french-tutor-assistant/internal/infrastructure/resilience"
	"github.com/dmorozov/french-tutor-assistant/internal/infrastructure/storage/localfs"
	"github.com/dmorozov/french-tutor-assistant/internal/infrastructure/vector/qdrant"
	"github.com/dmorozov/french-tutor-assistant/internal/knowledge"
	"github.com/dmorozov/french-tutor-assistant/internal/observability/tracing"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue ports.MessageQueue
	Repo  ports.DocumentRepository

	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	Assistant ports.Assistant

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tables, err := knowledge.Load(cfg.KnowledgePath)
	if err != nil {
		return nil, fmt.Errorf("load knowledge tables: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executorCfg := resilience.DefaultConfig()
	executorCfg.Logger = logger
	executor := resilience.NewExecutor(executorCfg)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.Options{
		ResilienceExecutor: executor,
	})
	classifier := ollama.NewTopicClassifier(ollamaClient)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	vectorIndex := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	textExtractor := extractor.NewRouter(
		plaintext.NewExtractor(storage),
		pdfdoc.NewExtractor(storage),
		spreadsheet.NewExtractor(storage),
	)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, textExtractor, classifier, chunker, embedder, vectorIndex)

	safety := usecase.NewSafetyFilter(usecase.SafetyFilterConfig{
		MaxQueryLength:   cfg.MaxQueryLength,
		InjectionPhrases: tables.InjectionPhrases,
		TopicTerms:       tables.TopicTerms,
		TopicThreshold:   cfg.TopicThreshold,
		AllowedLanguages: cfg.AllowedLanguages,
	})
	selfRAG := usecase.NewSelfRAG(tables.RetrievalTriggersHigh, tables.RetrievalTriggersLow)
	expander := usecase.NewQueryExpander(generator, usecase.QueryExpanderConfig{
		Synonyms:    tables.Synonyms,
		MaxVariants: cfg.MaxVariants,
		Temperature: cfg.GenTemperature,
		MaxTokens:   cfg.GenMaxTokens,
		Timeout:     cfg.GenerationTimeout,
	}, logger)
	retriever := usecase.NewRetriever(embedder, vectorIndex, usecase.RetrieverConfig{
		RetrievalK:     cfg.RetrievalK,
		FinalDocCount:  cfg.FinalDocCount,
		MMRLambda:      cfg.MMRLambda,
		DedupThreshold: cfg.DedupThreshold,
	})
	corrective := usecase.NewCorrectiveStage(selfRAG, tables.FallbackFacts)
	detector := usecase.NewHallucinationDetector(usecase.HallucinationDetectorConfig{
		GroundingThreshold:  cfg.GroundingThreshold,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		HighMarkers:         tables.HighCertaintyMarkers,
		LowMarkers:          tables.LowCertaintyMarkers,
		NegationPairs:       tables.NegationPairs,
	})

	assistant := usecase.NewPipeline(usecase.PipelineDeps{
		Safety:     safety,
		SelfRAG:    selfRAG,
		Expander:   expander,
		Retriever:  retriever,
		Corrective: corrective,
		Detector:   detector,
		CoVe:       usecase.NewChainOfVerification(cfg.ConfidenceThreshold),
		Generator:  generator,
		Trace:      tracing.NewSlogSink(logger),
		Logger:     logger,
	}, usecase.PipelineConfig{
		UseHyDE:           cfg.UseHyDE,
		GenerationTimeout: cfg.GenerationTimeout,
		Temperature:       cfg.GenTemperature,
		MaxTokens:         cfg.GenMaxTokens,
		SystemPrompt:      tables.SystemPrompt,
		FewShot:           tables.FewShot,
	})

	return &App{
		Config: cfg,
		Logger: logger,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		Assistant: assistant,

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
