package entitlement

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/entitlements/pkg/purchase"
)

// WithPlanCache enables a Redis-backed cache of resolved plans, useful
// when the purchase source is a remote billing API. Cache failures
// degrade to a fresh resolution, never to a request failure.
func WithPlanCache(client *redis.Client, ttl time.Duration) Option {
	return func(s *service) {
		if client == nil {
			return
		}
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		s.cache = &planCache{client: client, ttl: ttl, log: s.log}
	}
}

type planCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// cachedResolution is the wire form of a Resolution. Only the plan ID is
// stored; the plan itself is rehydrated from the catalog on read so a
// catalog redeploy immediately takes effect.
type cachedResolution struct {
	PlanID          string `json:"plan_id,omitempty"`
	HasSubscription bool   `json:"has_subscription"`
	HasPurchase     bool   `json:"has_purchase"`
}

func (c *planCache) key(accountID uuid.UUID) string {
	return "entitlement:plan:" + accountID.String()
}

func (c *planCache) get(ctx context.Context, accountID uuid.UUID) (cachedResolution, bool) {
	raw, err := c.client.Get(ctx, c.key(accountID)).Bytes()
	if err != nil {
		return cachedResolution{}, false
	}

	var cached cachedResolution
	if err := json.Unmarshal(raw, &cached); err != nil {
		return cachedResolution{}, false
	}
	return cached, true
}

func (c *planCache) set(ctx context.Context, accountID uuid.UUID, res purchase.Resolution) {
	cached := cachedResolution{
		HasSubscription: res.HasSubscription,
		HasPurchase:     res.HasPurchase,
	}
	if res.ActivePlan != nil {
		cached.PlanID = res.ActivePlan.ID
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(accountID), raw, c.ttl).Err(); err != nil {
		c.log.DebugContext(ctx, "plan cache write failed",
			slog.String("account_id", accountID.String()),
			slog.Any("error", err),
		)
	}
}

func (c *planCache) invalidate(ctx context.Context, accountID uuid.UUID) {
	_ = c.client.Del(ctx, c.key(accountID)).Err()
}
