// Package main implements the Planwise API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/PlanwiseAI/planwise-mvp/engine/corpus"
	"github.com/PlanwiseAI/planwise-mvp/engine/domain"
	"github.com/PlanwiseAI/planwise-mvp/engine/events"
	"github.com/PlanwiseAI/planwise-mvp/engine/graph"
	"github.com/PlanwiseAI/planwise-mvp/engine/ingest"
	"github.com/PlanwiseAI/planwise-mvp/engine/plan"
	"github.com/PlanwiseAI/planwise-mvp/engine/profile"
	"github.com/PlanwiseAI/planwise-mvp/engine/retrieval"
	"github.com/PlanwiseAI/planwise-mvp/engine/semantic"
	"github.com/PlanwiseAI/planwise-mvp/pkg/metrics"
	"github.com/PlanwiseAI/planwise-mvp/pkg/mid"
	"github.com/PlanwiseAI/planwise-mvp/pkg/ollama"
	"github.com/PlanwiseAI/planwise-mvp/pkg/tei"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Config holds all environment-based configuration.
type Config struct {
	Port           string
	MetricsPort    int
	OllamaURL      string
	EmbedModel     string
	GenerateModel  string
	EmbedRPS       float64
	RerankerURL    string
	IndexBackend   string // "memory" or "qdrant"
	QdrantURL      string
	Collection     string
	Neo4jURL       string // empty disables concept enrichment
	Neo4jUser      string
	Neo4jPass      string
	NATSURL        string // empty disables event publishing
	CorpusPath     string
	FactsPath      string
	ProfileLogPath string
	CORSOrigin     string
}

func loadConfig() Config {
	return Config{
		Port:           envOr("PORT", "8080"),
		MetricsPort:    envIntOr("METRICS_PORT", 9090),
		OllamaURL:      envOr("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel:     envOr("EMBED_MODEL", "nomic-embed-text"),
		GenerateModel:  envOr("GENERATE_MODEL", "llama3"),
		EmbedRPS:       envFloatOr("EMBED_RPS", 10),
		RerankerURL:    envOr("RERANKER_URL", "http://localhost:8081"),
		IndexBackend:   envOr("INDEX_BACKEND", "memory"),
		QdrantURL:      envOr("QDRANT_URL", "localhost:6334"),
		Collection:     envOr("QDRANT_COLLECTION", "planwise"),
		Neo4jURL:       envOr("NEO4J_URL", ""),
		Neo4jUser:      envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:      envOr("NEO4J_PASS", "password"),
		NATSURL:        envOr("NATS_URL", ""),
		CorpusPath:     envOr("CORPUS_PATH", "data/retirement_facts.txt"),
		FactsPath:      envOr("FACTS_PATH", "data/retirement_facts.json"),
		ProfileLogPath: envOr("PROFILE_LOG_PATH", "data/profile_log.json"),
		CORSOrigin:     envOr("CORS_ORIGIN", "*"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func main() {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()
	reg.ServeAsync(cfg.MetricsPort)

	embedder := ollama.NewEmbedClient(cfg.OllamaURL, cfg.EmbedModel, cfg.EmbedRPS)
	generator := ollama.NewGenerateClient(cfg.OllamaURL, cfg.GenerateModel)
	reranker := tei.NewRerankClient(cfg.RerankerURL)

	// --- Build the corpus index ---
	index, texts, err := buildIndex(ctx, cfg, embedder, reg, logger)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	retriever := retrieval.New(embedder, reranker, index, texts, logger)

	// --- Structured facts (optional file) ---
	var structuredFacts string
	if lines, err := corpus.LoadStructuredFacts(cfg.FactsPath); err != nil {
		logger.Warn("structured facts unavailable", "path", cfg.FactsPath, "err", err)
	} else {
		structuredFacts = strings.Join(lines, "\n")
	}

	// --- Optional concept graph (Neo4j) ---
	var concepts plan.ConceptSource
	if cfg.Neo4jURL != "" {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			logger.Warn("neo4j unavailable, concept enrichment disabled", "err", err)
		} else {
			defer driver.Close(ctx)
			store := graph.New(driver)
			if err := store.Seed(ctx); err != nil {
				logger.Warn("concept seed failed", "err", err)
			}
			concepts = store
		}
	}

	// --- Optional event publishing (NATS) ---
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn("nats unavailable, events disabled", "err", err)
		} else {
			defer nc.Close()
			publisher = events.NewPublisher(nc, logger)
		}
	}

	svc := plan.NewService(plan.Deps{
		Retriever:       retriever,
		Generator:       plan.NewGenerator(generator, nil, plan.DefaultGenerateTimeout, logger),
		Profiles:        profile.NewStore(cfg.ProfileLogPath),
		Concepts:        concepts,
		Events:          publisher,
		StructuredFacts: structuredFacts,
		Logger:          logger,
		Metrics:         reg,
	})

	// --- Build HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /retirement-plan", handlePlan(svc, reg, logger))

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("planwise-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// buildIndex chunks the corpus and either embeds it into an in-process
// index or attaches to a Qdrant collection populated by cmd/ingest.
// With Qdrant, the deterministic splitter reproduces the same chunk
// texts the ingest run stored, so the sequential ids line up.
func buildIndex(ctx context.Context, cfg Config, embedder retrieval.Embedder, reg *metrics.Registry, logger *slog.Logger) (semantic.Index, []string, error) {
	if cfg.IndexBackend == "qdrant" {
		qdr, err := semantic.NewQdrantIndex(cfg.QdrantURL, cfg.Collection)
		if err != nil {
			return nil, nil, fmt.Errorf("qdrant connect: %w", err)
		}

		doc, err := corpus.LoadDocument(cfg.CorpusPath)
		if err != nil {
			return nil, nil, err
		}
		texts := corpus.NewSplitter(ingest.DefaultChunkSize, ingest.DefaultOverlap).Split(doc)

		n, err := qdr.Len(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("qdrant count: %w", err)
		}
		if n != len(texts) {
			logger.Warn("qdrant collection out of step with corpus, run the ingest tool",
				"collection", cfg.Collection, "stored", n, "chunks", len(texts))
		}
		reg.Gauge("corpus_indexed_chunks", "chunks in the vector index").Set(int64(n))
		return qdr, texts, nil
	}

	mem := semantic.NewMemoryIndex(0)
	built, err := ingest.Build(ctx, ingest.Deps{
		Embedder: embedder,
		Index:    mem,
		Logger:   logger,
		Metrics:  reg,
	}, cfg.CorpusPath)
	if err != nil {
		return nil, nil, err
	}
	return mem, built.Texts, nil
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// PlanResponse is the success body for POST /retirement-plan.
type PlanResponse struct {
	Status         string         `json:"status"`
	RetirementPlan RetirementPlan `json:"retirement_plan"`
}

// RetirementPlan is the caller-facing plan payload.
type RetirementPlan struct {
	Plan                string  `json:"plan"`
	ProjectedSavings    float64 `json:"projected_savings"`
	YearsLeft           int     `json:"years_left"`
	Gap                 float64 `json:"gap"`
	RequiredSavingsRate float64 `json:"required_savings_rate"`
}

// ErrorResponse is the error body.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func handlePlan(svc *plan.Service, reg *metrics.Registry, logger *slog.Logger) http.HandlerFunc {
	if reg == nil {
		reg = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	requests := func(status string) {
		reg.Counter(metrics.WithLabels("plan_requests_total", "status", status),
			"retirement plan requests").Inc()
	}
	latency := reg.Histogram("plan_request_seconds", "end to end request latency", nil)

	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() { latency.Since(start) }()

		var profile domain.UserProfile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			requests("400")
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := svc.Plan(r.Context(), profile)
		if err != nil {
			if domain.IsValidation(err) {
				requests("400")
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error("plan request failed", "err", err)
			requests("500")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		requests("200")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(PlanResponse{
			Status: "success",
			RetirementPlan: RetirementPlan{
				Plan:                result.Narrative,
				ProjectedSavings:    result.Metrics.ProjectedSavings,
				YearsLeft:           result.Metrics.YearsLeft,
				Gap:                 result.Metrics.Gap,
				RequiredSavingsRate: result.Metrics.RequiredSavingsRate,
			},
		})
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{Status: "error", Error: msg})
}
