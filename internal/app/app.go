package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quickcal/quickcal/internal/config"
	"github.com/quickcal/quickcal/internal/database"
	"github.com/quickcal/quickcal/pkg/account"
	"github.com/quickcal/quickcal/pkg/extraction"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg config.Application
	db  *pgxpool.Pool
	srv *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	deps, err := BuildDependencies(cfg, account.NewRepository(db))
	if err != nil {
		db.Close()
		return nil, err
	}

	srv := &http.Server{
		Handler:      NewHandler(deps, cfg),
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		WriteTimeout: writeTimeout(cfg.Llm.Timeout),
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, db: db, srv: srv}, nil
}

// writeTimeout leaves room for a model call running its full timeout, using
// the same default the model extractor applies to an unset llm.timeout.
func writeTimeout(llmTimeout time.Duration) time.Duration {
	if llmTimeout <= 0 {
		llmTimeout = extraction.DefaultModelTimeout
	}
	return llmTimeout + 15*time.Second
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.srv.Shutdown(shutdownCtx)
}
