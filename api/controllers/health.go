package controllers

import (
	"context"
	"net/http"

	"github.com/tablemate-app/tablemate-backend/api/responses"
	"github.com/tablemate-app/tablemate-backend/pkg/config"
	pkgerrors "github.com/tablemate-app/tablemate-backend/pkg/errors"
	"github.com/tablemate-app/tablemate-backend/pkg/logger"
)

// Pinger is the health check surface each wired dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TableMate-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every wired dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TableMate-Env", cfg.App.Env)

		checks := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				checks[name] = "unavailable"
				healthy = false
				if logg != nil {
					ctx := logg.WithField(r.Context(), "dependency", name)
					logg.Error(ctx, "readiness check failed", err)
				}
				continue
			}
			checks[name] = "ok"
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks)
			responses.WriteError(r.Context(), nil, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

// ReadinessDeps builds the dependency map for HealthReady.
func ReadinessDeps(db, redis, blobs Pinger) map[string]Pinger {
	deps := map[string]Pinger{}
	if db != nil {
		deps["db"] = db
	}
	if redis != nil {
		deps["redis"] = redis
	}
	if blobs != nil {
		deps["blob_store"] = blobs
	}
	return deps
}
