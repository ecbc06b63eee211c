package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spigell/optiplan-ai/internal/ai/gemini"
	"github.com/spigell/optiplan-ai/internal/logger"
	"github.com/spigell/optiplan-ai/internal/matching"
	"github.com/spigell/optiplan-ai/internal/secrets"
	"github.com/spigell/optiplan-ai/internal/server"
	"github.com/spigell/optiplan-ai/internal/vectorstore"
	"github.com/spigell/optiplan-ai/internal/vectorstore/pinecone"
	"github.com/spigell/optiplan-ai/internal/vectorstore/upstash"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the optiplan-ai HTTP service",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	zlog.Info("starting the optiplan-ai service", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	zlog.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	engine, err := buildEngine(ctx, config, zlog)
	if err != nil {
		zlog.Fatal("building the matching engine", zap.Error(err))
	}

	var roadmap server.RoadmapGenerator
	if rm, err := buildRoadmap(ctx, config, zlog); err != nil {
		zlog.Warn("roadmap generation disabled", zap.Error(err))
	} else {
		roadmap = rm
	}

	srv := server.New(config.Listen, engine, roadmap, zlog)
	if err := srv.Run(ctx); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}

	zlog.Info("exiting", zap.String("reason", "shutdown signal received"))
}

// buildEngine wires the configured vector store provider into a matching engine.
func buildEngine(ctx context.Context, config *Config, zlog *zap.Logger) (*matching.Engine, error) {
	store, err := buildStore(ctx, config, zlog)
	if err != nil {
		return nil, err
	}

	return matching.NewEngine(matching.EngineOptions{
		Skills: store,
		Tasks:  store,
		Logger: zlog,
		TopK:   config.TopK,
	})
}

func buildStore(ctx context.Context, config *Config, zlog *zap.Logger) (vectorstore.Store, error) {
	provider := strings.TrimSpace(strings.ToLower(config.Provider))

	switch provider {
	case "", "upstash":
		if config.Upstash == nil {
			return nil, fmt.Errorf("upstash configuration is required for the upstash provider")
		}

		token, err := secrets.Load(secrets.Source{
			Name: "upstash vector token",
			File: config.Upstash.TokenFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set upstash.token-file or UPSTASH_VECTOR_TOKEN_FILE)", err)
		}

		return upstash.New(config.Upstash.URL, token, zlog)

	case "pinecone":
		if config.Pinecone == nil {
			return nil, fmt.Errorf("pinecone configuration is required for the pinecone provider")
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "pinecone api key",
			File: config.Pinecone.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set pinecone.api-key-file or PINECONE_API_KEY_FILE)", err)
		}

		embedder, err := buildEmbedder(ctx, config, zlog)
		if err != nil {
			return nil, fmt.Errorf("the pinecone provider needs a gemini embedder: %w", err)
		}

		return pinecone.New(config.Pinecone.IndexHost, apiKey, embedder, zlog)

	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", config.Provider)
	}
}

func buildEmbedder(ctx context.Context, config *Config, zlog *zap.Logger) (*gemini.Embedder, error) {
	client, err := buildGeminiClient(ctx, config)
	if err != nil {
		return nil, err
	}

	model := ""
	dimension := 0
	if config.Gemini != nil {
		model = config.Gemini.EmbeddingModel
	}
	if config.Pinecone != nil {
		dimension = config.Pinecone.Dimension
	}

	embedLogger := logger.WithCommonFields(zlog, "gemini", model)

	return gemini.NewEmbedder(client, model, dimension, embedLogger), nil
}

func buildRoadmap(ctx context.Context, config *Config, zlog *zap.Logger) (*gemini.Roadmap, error) {
	client, err := buildGeminiClient(ctx, config)
	if err != nil {
		return nil, err
	}

	model := ""
	maxLogLength := 0
	if config.Gemini != nil {
		model = config.Gemini.Model
		maxLogLength = config.Gemini.MaxLogLength
	}

	generator := gemini.NewGenerator(client, model)
	genLogger := logger.WithCommonFields(zlog, "gemini", generator.Model())

	return gemini.NewRoadmap(generator, genLogger, maxLogLength), nil
}

func buildGeminiClient(ctx context.Context, config *Config) (*genai.Client, error) {
	if config.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	return gemini.NewClient(ctx, apiKey)
}
