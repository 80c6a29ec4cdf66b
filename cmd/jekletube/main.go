package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/djmontana/jekletube/internal/api"
	"github.com/djmontana/jekletube/internal/flow"
	"github.com/djmontana/jekletube/internal/genai"
	"github.com/djmontana/jekletube/internal/messenger"
	"github.com/djmontana/jekletube/internal/store"
	"github.com/djmontana/jekletube/internal/util"
	"github.com/djmontana/jekletube/internal/youtube"
)

// DefaultAPIAddr is the listen address used when none is configured.
const DefaultAPIAddr = ":3000"

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if *flags.verifyToken == "" {
		slog.Error("MESSENGER_VERIFY_TOKEN is required")
		os.Exit(1)
	}
	if *flags.pageToken == "" {
		slog.Error("MESSENGER_PAGE_ACCESS_TOKEN is required")
		os.Exit(1)
	}

	genaiClient, err := genai.NewClient(genai.WithAPIKey(*flags.mistralKey))
	if err != nil {
		slog.Error("Failed to create GenAI client", "error", err)
		os.Exit(1)
	}

	sender := messenger.NewClient(messenger.WithAccessToken(*flags.pageToken))
	videos := youtube.NewClient()
	stateStore := store.NewInMemoryStore()
	conversation := flow.NewConversation(stateStore, genaiClient, videos, videos, sender)

	server := api.NewServer(conversation,
		api.WithAddr(*flags.apiAddr),
		api.WithVerifyToken(*flags.verifyToken),
	)

	slog.Info("Bootstrapping JekleTube", "addr", *flags.apiAddr)
	if err := server.Run(); err != nil {
		slog.Error("JekleTube failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("JekleTube exited successfully")
}

// Config holds environment configuration
type Config struct {
	VerifyToken string
	PageToken   string
	MistralKey  string
	APIAddr     string
}

// Flags holds command line flag values
type Flags struct {
	verifyToken *string
	pageToken   *string
	mistralKey  *string
	apiAddr     *string
}

// initializeLogger sets up structured logging; debug level is opt-in.
func initializeLogger() {
	level := slog.LevelInfo
	if util.BoolEnv("JEKLETUBE_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		VerifyToken: os.Getenv("MESSENGER_VERIFY_TOKEN"),
		PageToken:   os.Getenv("MESSENGER_PAGE_ACCESS_TOKEN"),
		MistralKey:  os.Getenv("MISTRAL_API_KEY"),
		APIAddr:     util.EnvOrDefault("API_ADDR", DefaultAPIAddr),
	}

	slog.Debug("environment variables loaded",
		"MESSENGER_VERIFY_TOKEN_SET", config.VerifyToken != "",
		"MESSENGER_PAGE_ACCESS_TOKEN_SET", config.PageToken != "",
		"MISTRAL_API_KEY_SET", config.MistralKey != "",
		"API_ADDR", config.APIAddr)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		verifyToken: flag.String("verify-token", config.VerifyToken, "webhook verification token (overrides $MESSENGER_VERIFY_TOKEN)"),
		pageToken:   flag.String("page-token", config.PageToken, "Messenger page access token (overrides $MESSENGER_PAGE_ACCESS_TOKEN)"),
		mistralKey:  flag.String("mistral-api-key", config.MistralKey, "Mistral API key (overrides $MISTRAL_API_KEY)"),
		apiAddr:     flag.String("api-addr", config.APIAddr, "webhook server address (overrides $API_ADDR)"),
	}
	flag.Parse()
	return flags
}
