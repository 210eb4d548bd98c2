package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-report-service/internal/app"
	"quiz-report-service/internal/bank"
	"quiz-report-service/internal/config"
	"quiz-report-service/internal/domain"
	"quiz-report-service/internal/infra/emailjs"
	"quiz-report-service/internal/infra/memory"
	pgloader "quiz-report-service/internal/infra/postgres"
	redisinfra "quiz-report-service/internal/infra/redis"
	"quiz-report-service/internal/infra/sqlite"
	transport "quiz-report-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	svc, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	handler := transport.NewRouter(svc.quizzes, svc.reports, transport.Options{
		DefaultBankID: svc.bankID,
		RevealDelay:   config.Duration(cfg.Quiz.RevealDelay, 500*time.Millisecond),
		ResetDelay:    config.Duration(cfg.Quiz.ResetDelay, 800*time.Millisecond),
	}, cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s (bank %s)", finalPort, svc.bankID)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

type services struct {
	quizzes *app.QuizService
	reports *app.ReportService
	bankID  string
	closers []func()
}

func (s *services) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// buildServices picks each backend from config: Postgres, then SQLite, then
// the built-in catalog for banks; Redis or memory for sessions and the bank
// cache; EmailJS or the logging dispatcher for reports.
func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	svc := &services{bankID: cfg.Quiz.BankID}
	if svc.bankID == "" {
		svc.bankID = bank.DefaultID
	}

	var extra []domain.Bank
	if cfg.Quiz.BankFile != "" {
		b, err := loadBankFile(cfg.Quiz.BankFile)
		if err != nil {
			return nil, err
		}
		extra = append(extra, b)
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(bank.Catalog(extra...))
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, pool.Close)
		loader = pgloader.NewBankLoader(pool)
	case cfg.SQLite.Path != "":
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, func() { _ = store.Close() })
		for _, b := range append([]domain.Bank{bank.Default()}, extra...) {
			if err := store.SaveBank(ctx, b); err != nil {
				svc.close()
				return nil, err
			}
		}
		loader = store
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		svc.closers = append(svc.closers, func() { _ = redisClient.Close() })
	}

	bankTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	sessionTTL := config.Duration(cfg.Redis.TTL, 30*time.Minute)

	var banks app.BankRepository
	var sessions app.SessionRepository
	if redisClient != nil {
		banks = redisinfra.NewBankRepository(redisClient, loader, bankTTL)
		sessions = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		banks = memory.NewBankRepository(loader, bankTTL)
		sessions = memory.NewSessionStoreWithTTL(sessionTTL)
	}

	var dispatcher app.ReportDispatcher
	if cfg.EmailConfigured() {
		dispatcher = emailjs.NewDispatcher(emailjs.Config{
			Endpoint:   cfg.EmailJS.Endpoint,
			ServiceID:  cfg.EmailJS.ServiceID,
			TemplateID: cfg.EmailJS.TemplateID,
			PublicKey:  cfg.EmailJS.PublicKey,
			PrivateKey: cfg.EmailJS.PrivateKey,
			Timeout:    config.Duration(cfg.EmailJS.Timeout, 10*time.Second),
		})
	} else {
		log.Printf("emailjs not configured, reports will only be logged")
		dispatcher = memory.NewLogDispatcher()
	}

	svc.quizzes = app.NewQuizService(sessions, banks)
	svc.reports = app.NewReportService(dispatcher)
	return svc, nil
}

func loadBankFile(path string) (domain.Bank, error) {
	b, err := bank.LoadFile(path)
	if err != nil {
		return domain.Bank{}, fmt.Errorf("load bank file %s: %w", path, err)
	}
	return b, nil
}
