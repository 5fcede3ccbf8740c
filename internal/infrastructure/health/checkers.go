// Package health provides liveness checks for the two stores the token
// workflow depends on. Each check is a cheap ping; the handler decides
// how a failure degrades the overall status.
package health

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/thepotential/verification-service/internal/core/ports"
	infraDB "github.com/thepotential/verification-service/internal/infrastructure/db"
)

type dbHealthChecker struct{ db *infraDB.Database }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.DB.PingContext(ctx) }

type redisHealthChecker struct{ client *redis.Client }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

func NewRedisHealthChecker(client *redis.Client) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}
