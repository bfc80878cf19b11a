package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/personal-assistant/chatbot/handler"
	"github.com/personal-assistant/chatbot/internal/config"
	"github.com/personal-assistant/chatbot/internal/conversation"
	"github.com/personal-assistant/chatbot/internal/integrations/news"
	"github.com/personal-assistant/chatbot/internal/integrations/paramstore"
	"github.com/personal-assistant/chatbot/internal/integrations/search"
	"github.com/personal-assistant/chatbot/internal/integrations/weather"
	"github.com/personal-assistant/chatbot/internal/repository"
	"github.com/personal-assistant/chatbot/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// ---- AWS SDK config (only loaded when a backend needs it) ----
	loadAWS := sync.OnceValues(func() (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	awsLoader := func(context.Context) (aws.Config, error) { return loadAWS() }

	// ---- Storage ----
	store, closeStore, err := repository.Open(ctx, cfg.Store, awsLoader)
	if err != nil {
		logger.Error("failed to open personal info store", "backend", cfg.Store.Backend, "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("failed to close personal info store", "err", err)
		}
	}()

	// ---- Provider clients ----
	keys, err := keyGetter(ctx, cfg, awsLoader)
	if err != nil {
		logger.Error("failed to create parameter getter", "err", err)
		os.Exit(1)
	}
	weatherKey, newsKey, searchKey := cfg.KeyNames()
	httpClient := &http.Client{Timeout: cfg.Providers.Timeout}

	weatherClient, err := weather.NewClient(mustSecret(keys, weatherKey),
		weather.WithBaseURL(cfg.Providers.WeatherURL),
		weather.WithHTTPClient(httpClient),
		weather.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create weather client", "err", err)
		os.Exit(1)
	}
	newsClient, err := news.NewClient(mustSecret(keys, newsKey),
		news.WithBaseURL(cfg.Providers.NewsURL),
		news.WithHTTPClient(httpClient),
	)
	if err != nil {
		logger.Error("failed to create news client", "err", err)
		os.Exit(1)
	}
	searchClient, err := search.NewClient(mustSecret(keys, searchKey),
		search.WithBaseURL(cfg.Providers.SearchURL),
		search.WithHTTPClient(httpClient),
	)
	if err != nil {
		logger.Error("failed to create search client", "err", err)
		os.Exit(1)
	}

	// ---- Use cases ----
	assistant, err := usecase.NewAssistantService(weatherClient, newsClient, searchClient,
		cfg.Providers.NewsLimit, cfg.Providers.SearchLimit, logger)
	if err != nil {
		logger.Error("failed to create assistant service", "err", err)
		os.Exit(1)
	}
	info, err := usecase.NewPersonalInfoService(store)
	if err != nil {
		logger.Error("failed to create personal info service", "err", err)
		os.Exit(1)
	}
	chat, err := usecase.NewChatService(store, conversation.NewTracker(), assistant, cfg.DefaultUserID)
	if err != nil {
		logger.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(chat, info, assistant, logger)
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		lambda.Start(h.Handle)
		return
	}
	if err := serve(ctx, cfg.Addr, h, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// keyGetter reads API keys from SSM when a parameter prefix is configured and
// from the environment otherwise.
func keyGetter(ctx context.Context, cfg config.Config, loadAWS func(context.Context) (aws.Config, error)) (paramstore.Getter, error) {
	if !cfg.UsesParamStore() {
		return paramstore.NewEnv(), nil
	}
	awsCfg, err := loadAWS(ctx)
	if err != nil {
		return nil, err
	}
	return paramstore.New(awsssm.NewFromConfig(awsCfg), cfg.ParamPrefix)
}

func mustSecret(g paramstore.Getter, name string) *paramstore.Secret {
	s, err := paramstore.NewSecret(g, name)
	if err != nil {
		slog.Error("invalid API key parameter", "name", name, "err", err)
		os.Exit(1)
	}
	return s
}

func serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("chatbot listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
