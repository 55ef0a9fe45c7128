package controllers

import (
	"context"
	"net/http"

	"github.com/mateoquiroz/bookhaven-backend/api/responses"
	"github.com/mateoquiroz/bookhaven-backend/pkg/config"
	pkgerrors "github.com/mateoquiroz/bookhaven-backend/pkg/errors"
	"github.com/mateoquiroz/bookhaven-backend/pkg/logger"
)

// ReadyChecker is satisfied by the db and redis clients.
type ReadyChecker interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BookHaven-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]ReadyChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BookHaven-Env", cfg.App.Env)

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
