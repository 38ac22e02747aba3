package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"veridoc/internal/config"
	"veridoc/internal/consensus"
	"veridoc/internal/email/noop"
	"veridoc/internal/email/ses"
	"veridoc/internal/handler"
	"veridoc/internal/parser"
	"veridoc/internal/parser/claude"
	"veridoc/internal/parser/gemini"
	"veridoc/internal/parser/openai"
	"veridoc/internal/port"
	"veridoc/internal/repository/postgres"
	"veridoc/internal/router"
	"veridoc/internal/service"
	s3storage "veridoc/internal/storage/s3"
)

// @title Veridoc API
// @version 1.0
// @description Document verification platform: upload, dual-model extraction, audit and review.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	fileRepo := postgres.NewFileMetaRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	eventRepo := postgres.NewReviewEventRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize email sender
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender()
	}

	// Register parser providers and build the fast/expert ensemble
	parser.RegisterProvider("claude", func(c *config.ParserProviderConfig) (port.DocumentParser, error) {
		return claude.NewParser(c), nil
	})
	parser.RegisterProvider("openai", func(c *config.ParserProviderConfig) (port.DocumentParser, error) {
		return openai.NewParser(c), nil
	})
	parser.RegisterProvider("gemini", func(c *config.ParserProviderConfig) (port.DocumentParser, error) {
		return gemini.NewParser(c), nil
	})

	fastParser, err := parser.NewParser(&cfg.Parser.Fast)
	if err != nil {
		return fmt.Errorf("failed to initialize fast parser: %w", err)
	}
	expertParser, err := parser.NewParser(&cfg.Parser.Expert)
	if err != nil {
		return fmt.Errorf("failed to initialize expert parser: %w", err)
	}
	ensemble := parser.NewEnsemble(fastParser, expertParser)
	weight := consensus.ParseModelWeight(cfg.Consensus.ModelWeight)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	fileSvc := service.NewFileService(fileRepo, s3Client, &cfg.S3)
	docSvc := service.NewDocumentService(
		docRepo, fileRepo, eventRepo, s3Client,
		ensemble, weight,
		emailSender, splitList(cfg.Email.ReviewerList), cfg.Email.FrontendURL,
	)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	fileH := handler.NewFileHandler(fileSvc, docSvc)
	docH := handler.NewDocumentHandler(docSvc)
	exportH := handler.NewExportHandler(docSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, authSvc, authH, fileH, docH, exportH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the parse queue worker
	worker := service.NewParseQueueWorker(docRepo, docSvc, service.ParseQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		stop()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone

	return nil
}

// splitList parses a comma-separated list, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
