package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "optiplan-ai"
)

type Config struct {
	Listen   string          `mapstructure:"listen"`
	Provider string          `mapstructure:"provider"`
	TopK     int             `mapstructure:"top-k"`
	Upstash  *UpstashConfig  `mapstructure:"upstash"`
	Pinecone *PineconeConfig `mapstructure:"pinecone"`
	Gemini   *GeminiConfig   `mapstructure:"gemini"`
}

type UpstashConfig struct {
	URL       string `mapstructure:"url"`
	TokenFile string `mapstructure:"token-file"`
}

type PineconeConfig struct {
	IndexHost  string `mapstructure:"index-host"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Dimension  int    `mapstructure:"dimension"`
}

type GeminiConfig struct {
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	MaxLogLength   int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "optiplan-ai matches users to tasks with vector search and generates project roadmaps",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("upstash.token-file", "UPSTASH_VECTOR_TOKEN_FILE"); err != nil {
		log.Fatalf("binding UPSTASH_VECTOR_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("pinecone.api-key-file", "PINECONE_API_KEY_FILE"); err != nil {
		log.Fatalf("binding PINECONE_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is optiplan-ai.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	// A missing config file is fine: everything has defaults or env bindings.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Listen == "" {
		config.Listen = ":8000"
	}
	if config.Provider == "" {
		config.Provider = "upstash"
	}

	return config, nil
}
