package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"Motorsize/internal/auth"
	"Motorsize/internal/calc/batch"
	"Motorsize/internal/calc/importer"
	"Motorsize/internal/calc/lca"
	"Motorsize/internal/calc/motor"
	"Motorsize/internal/calc/report"
	"Motorsize/internal/config"
	"Motorsize/internal/designs"
	"Motorsize/internal/metrics"
	"Motorsize/internal/repo"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type Deps struct {
	Config config.Config
	Logger *zap.Logger
	// Repo backs accounts and saved designs. Nil disables both.
	Repo repo.Repository
}

// HandleList registers every route on r.
func HandleList(r *mux.Router, d Deps) {
	log := d.Logger

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	limiter := auth.NewIPRateLimiter(rate.Limit(d.Config.RateLimit), d.Config.RateBurst)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	motorH := &motor.Handler{Logger: log}
	batchH := &batch.Handler{Workers: d.Config.BatchWorkers, Logger: log}
	importH := &importer.Handler{Logger: log}
	reportH := &report.Handler{Logger: log}
	lcaH := &lca.Handler{}

	api.HandleFunc("/tools/motor/calc", motorH.Calc).Methods(http.MethodPost)
	api.HandleFunc("/tools/motor/batch", batchH.Calc).Methods(http.MethodPost)
	api.HandleFunc("/tools/motor/import", importH.Import).Methods(http.MethodPost)
	api.HandleFunc("/tools/motor/report", reportH.Generate).Methods(http.MethodPost)
	api.HandleFunc("/tools/lca/calc", lcaH.Calc).Methods(http.MethodPost)

	if d.Repo == nil {
		return
	}
	authEnv := &auth.Authenv{
		JWTkey: []byte(d.Config.TokenKey),
		Repo:   d.Repo,
		Secure: d.Config.TLS(),
		Logger: log,
	}
	api.HandleFunc("/login", authEnv.AuthHandler).Methods(http.MethodPost)
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods(http.MethodPost)
	api.HandleFunc("/logout", authEnv.LogoutHandler).Methods(http.MethodPost)

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	designsH := &designs.Handler{Repo: d.Repo, Logger: log}
	secureApi.HandleFunc("/designs", designsH.Save).Methods(http.MethodPost)
	secureApi.HandleFunc("/designs", designsH.List).Methods(http.MethodGet)
	secureApi.HandleFunc("/designs/{id}", designsH.Get).Methods(http.MethodGet)
}

func NewHandler(d Deps) http.Handler {
	r := mux.NewRouter()
	HandleList(r, d)
	return metrics.Middleware(CORS(r))
}

// Run serves until ctx is cancelled, then drains open connections.
// Accounts use PostgreSQL when DATABASE_URL is set and process memory
// when only TOKEN_KEY is set.
func Run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	deps := Deps{Config: cfg, Logger: log}

	switch {
	case cfg.Persistence():
		db, err := repo.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := migrate(ctx, db); err != nil {
			return err
		}
		deps.Repo = repo.NewPostgresUserDB(db)
		log.Info("design store", zap.String("backend", "postgres"))
	case cfg.TokenKey != "":
		deps.Repo = repo.NewMemoryRepository()
		log.Warn("design store", zap.String("backend", "memory"))
	default:
		log.Info("accounts disabled", zap.String("reason", "TOKEN_KEY not set"))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	errc := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("starting server", zap.String("addr", cfg.Addr), zap.Bool("tls", cfg.TLS()))
		var err error
		if cfg.TLS() {
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errc:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	wg.Wait()
	log.Info("server stopped")
	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return repo.EnsureSchema(ctx, db)
}
