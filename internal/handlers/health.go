package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is a dependency the health endpoint checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthDeps lists the checked dependencies. Required failures make the service unhealthy;
// optional ones only degrade it. A nil optional dependency is reported as skipped.
type HealthDeps struct {
	DB       Pinger
	Storage  Pinger
	RabbitMQ Pinger
	Redis    Pinger
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func Health(deps *HealthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		status := "healthy"

		check := func(name string, p Pinger, required bool) {
			if p == nil {
				checks[name] = "skipped"
				return
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "unhealthy"
				if required {
					status = "unhealthy"
				} else if status == "healthy" {
					status = "degraded"
				}
				return
			}
			checks[name] = "ok"
		}

		check("db", deps.DB, true)
		check("s3", deps.Storage, true)
		check("rabbitmq", deps.RabbitMQ, false)
		check("redis", deps.Redis, false)

		code := http.StatusOK
		if status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, healthResponse{Status: status, Checks: checks})
	}
}
