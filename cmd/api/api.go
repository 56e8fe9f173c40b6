package main

import (
	"net/http"
	gosync "sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/logger"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
	syncer "github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/sync"
)

const version = "0.1.0"

type application struct {
	config       config
	store        *store.Storage
	db           *sqlx.DB
	orchestrator *syncer.Orchestrator
	log          *logger.Logger

	runMu   gosync.Mutex
	running map[string]bool
}

type config struct {
	addr           string
	db             dbConfig
	uau            gatewayConfig
	sienge         gatewayConfig
	discountRate   float64
	workers        int
	windowMonths   int
	requestTimeout time.Duration
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

type gatewayConfig struct {
	baseURL  string
	username string
	password string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(app.config.requestTimeout))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Route("/sync", func(r chi.Router) {
			r.Post("/", app.handleTriggerSync)
			r.Get("/runs", app.handleListSyncRuns)
			r.Get("/runs/{id}", app.handleGetSyncRun)
		})
		r.Route("/developments", func(r chi.Router) {
			r.Get("/", app.handleListDevelopments)
			r.Route("/{developmentID}", func(r chi.Router) {
				r.Get("/snapshot", app.handleGetSnapshot)
				r.Get("/aging", app.handleGetAging)
				r.Get("/cash-in", app.handleGetCashIn)
			})
		})
	})

	return r
}

// tryAcquire marks a source as busy; a second trigger while a run is in
// flight is rejected instead of queued.
func (app *application) tryAcquire(source string) bool {
	app.runMu.Lock()
	defer app.runMu.Unlock()
	if app.running[source] {
		return false
	}
	app.running[source] = true
	return true
}

func (app *application) release(source string) {
	app.runMu.Lock()
	defer app.runMu.Unlock()
	delete(app.running, source)
}

func (app *application) run(mux http.Handler) error {

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	app.log.Info("API", "Server started on %s", app.config.addr)
	return srv.ListenAndServe()
}
