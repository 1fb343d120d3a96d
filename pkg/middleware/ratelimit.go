package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/configuration"
	"github.com/plotline-hq/plotline/pkg/httpapi"
)

// RateLimit throttles requests per tenant. Tenants in their grace period get
// a fraction of the normal throughput, which keeps their integrations alive
// while making the lapsed subscription impossible to ignore. A tenant whose
// tier caps daily API calls is additionally held to that ceiling. Anonymous
// requests are keyed by client IP.
func RateLimit(clock clockwork.Clock) mux.MiddlewareFunc {
	conf := configuration.Use()
	opts := conf.RateLimit
	if !opts.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	store := newLimiterStore(conf)
	full := limiter.New(store, limiter.Rate{
		Period: time.Second,
		Limit:  int64(opts.GlobalRPS),
	})
	graceLimit := int64(opts.GlobalRPS * opts.GracePercent / 100)
	if graceLimit < 1 {
		graceLimit = 1
	}
	grace := limiter.New(store, limiter.Rate{
		Period: time.Second,
		Limit:  graceLimit,
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			instance := full
			key := r.RemoteAddr
			if ip, ok := composables.UseIP(r.Context()); ok && ip != "" {
				key = ip
			}
			if t, err := composables.UseTenant(r.Context()); err == nil {
				key = t.ID().String()
				if denied := enforceDailyQuota(w, r, store, t, key); denied {
					return
				}
				if t.Status(clock.Now()).Access() == tenant.AccessDegraded {
					instance = grace
					key += ":grace"
				}
			}

			limiterCtx, err := instance.Get(r.Context(), key)
			if err != nil {
				composables.UseLogger(r.Context()).WithError(err).Error("rate limiter store unavailable")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limiterCtx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(limiterCtx.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(limiterCtx.Reset, 10))

			if limiterCtx.Reached {
				_ = httpapi.WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// enforceDailyQuota holds a tenant to its tier's max daily API calls,
// counted over a rolling 24h window on the shared limiter store. Quota and
// subscription state are orthogonal: an active tenant on a capped tier
// still hits the ceiling.
func enforceDailyQuota(w http.ResponseWriter, r *http.Request, store limiter.Store, t *tenant.Tenant, key string) bool {
	quota := t.Quotas().MaxDailyRequests
	if quota <= 0 {
		return false
	}

	daily := limiter.New(store, limiter.Rate{
		Period: 24 * time.Hour,
		Limit:  int64(quota),
	})
	dayCtx, err := daily.Get(r.Context(), key+":daily")
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("rate limiter store unavailable")
		return false
	}
	if !dayCtx.Reached {
		return false
	}

	_ = httpapi.WriteError(w, http.StatusTooManyRequests, "QUOTA_EXCEEDED", "daily request quota exceeded", map[string]string{
		"resource": "api_calls",
		"limit":    strconv.Itoa(quota),
	})
	return true
}

func newLimiterStore(conf *configuration.Configuration) limiter.Store {
	opts := conf.RateLimit
	if opts.Storage == "redis" {
		redisOpts, err := redis.ParseURL(opts.RedisURL)
		if err != nil {
			conf.Logger().WithError(err).Warn("invalid redis URL, falling back to in-memory rate limiting")
			return memory.NewStore()
		}
		client := redis.NewClient(redisOpts)
		store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix: "plotline:ratelimit",
		})
		if err != nil {
			conf.Logger().WithError(err).Warn("redis store unavailable, falling back to in-memory rate limiting")
			return memory.NewStore()
		}
		return store
	}
	return memory.NewStore()
}
