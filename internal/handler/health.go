package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	healthConnected = "connected"
	healthError     = "error"
	healthDisabled  = "disabled"
)

// dependencyCheck pings one backing service. A nil ping marks it disabled.
type dependencyCheck struct {
	name string
	ping func(ctx context.Context) error
}

func (d dependencyCheck) run(ctx context.Context) (string, time.Duration) {
	if d.ping == nil {
		return healthDisabled, 0
	}
	start := time.Now()
	if err := d.ping(ctx); err != nil {
		log.Warn().Err(err).Str("dependency", d.name).Msg("health check failed")
		return healthError, time.Since(start)
	}
	return healthConnected, time.Since(start)
}

// Health reports database and Redis reachability. An unconfigured Redis is
// reported as disabled and does not fail the check.
// Error details go to the log, never to the response.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	checks := []dependencyCheck{{
		name: "db",
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}, {name: "redis"}}
	if rdb != nil {
		checks[1].ping = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		body := gin.H{}
		latency := gin.H{}
		healthy := true
		for _, chk := range checks {
			state, took := chk.run(ctx)
			body[chk.name] = state
			if state != healthDisabled {
				latency[chk.name] = took.Milliseconds()
			}
			if state == healthError {
				healthy = false
			}
		}
		body["latency_ms"] = latency
		body["ok"] = healthy

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}
