package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dustinwells/sprinter-leads/pkg/config"
)

// IdentityType classifies the caller for rule selection.
type IdentityType int

const (
	// IdentityAnonymous is an unauthenticated caller, keyed by client IP.
	IdentityAnonymous IdentityType = iota
	// IdentityAuthenticated is an authenticated caller, keyed by user identity.
	IdentityAuthenticated
)

// Rule is the effective limit applied to one endpoint/identity combination.
type Rule struct {
	Limit  int
	Burst  int
	Window time.Duration
}

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed      bool
	Remaining    int
	RetryAfter   time.Duration
	Limit        int
	Window       time.Duration
	ResetAfter   time.Duration
	IdentityKey  string
	EndpointKey  string
	IdentityType IdentityType
}

// tokenBucketScript refills a per-key token bucket and takes one token.
// Returns {allowed, remaining, retry_after_seconds, reset_after_seconds}.
const tokenBucketScript = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(bucket[1])
local ts = tonumber(bucket[2])
if tokens == nil or ts == nil then
  tokens = capacity
  ts = now
end

local elapsed = now - ts
if elapsed < 0 then
  elapsed = 0
end
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
local retry_after = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
else
  retry_after = (1 - tokens) / rate
end

local reset_after = (capacity - tokens) / rate
redis.call('HMSET', key, 'tokens', tokens, 'ts', now)
redis.call('EXPIRE', key, math.ceil(reset_after) + 1)

return {allowed, math.floor(tokens), tostring(retry_after), tostring(reset_after)}
`

// Limiter is a Redis-backed token bucket rate limiter.
type Limiter struct {
	client *redis.Client
	cfg    config.RateLimitConfig
	script *redis.Script
	now    func() time.Time
}

// NewLimiter creates a Limiter using the given Redis client and configuration.
func NewLimiter(client *redis.Client, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		client: client,
		cfg:    cfg,
		script: redis.NewScript(tokenBucketScript),
		now:    time.Now,
	}
}

// WithNow overrides the limiter clock, for tests.
func (l *Limiter) WithNow(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// RuleFor resolves the effective rule for an endpoint and identity type,
// applying any per-endpoint override on top of the configured defaults.
func (l *Limiter) RuleFor(endpoint string, identity IdentityType) Rule {
	limit := l.cfg.DefaultLimit
	burst := l.cfg.DefaultBurst
	if identity == IdentityAnonymous {
		limit = l.cfg.AnonymousLimit
		burst = l.cfg.AnonymousBurst
	}
	window := l.cfg.Window()

	if override, ok := l.cfg.EndpointOverrides[endpoint]; ok {
		overrideLimit, overrideBurst := override.AuthenticatedLimit, override.AuthenticatedBurst
		if identity == IdentityAnonymous {
			overrideLimit, overrideBurst = override.AnonymousLimit, override.AnonymousBurst
		}
		if overrideLimit > 0 {
			limit = overrideLimit
		}
		burst = overrideBurst
		if override.WindowSeconds > 0 {
			window = time.Duration(override.WindowSeconds) * time.Second
		}
	}

	if burst < 0 {
		burst = 0
	}

	return Rule{Limit: limit, Burst: burst, Window: window}
}

// Allow checks whether the identified caller may proceed. A disabled limiter
// or a non-positive limit bypasses Redis entirely.
func (l *Limiter) Allow(ctx context.Context, endpoint, identity string, rule Rule, identityType IdentityType) (*Result, error) {
	result := &Result{
		Allowed:      true,
		Limit:        rule.Limit,
		Window:       rule.Window,
		IdentityKey:  identity,
		EndpointKey:  endpoint,
		IdentityType: identityType,
	}

	if !l.cfg.Enabled || rule.Limit <= 0 {
		if rule.Limit > 0 {
			result.Remaining = rule.Limit
		}
		return result, nil
	}

	window := rule.Window
	if window <= 0 {
		window = l.cfg.Window()
		result.Window = window
	}

	rate := float64(rule.Limit) / window.Seconds()
	capacity := float64(rule.Limit + rule.Burst)
	nowSeconds := float64(l.now().UnixNano()) / float64(time.Second)

	key := fmt.Sprintf("%s:%s:%s", l.cfg.RedisPrefix, endpoint, identity)
	raw, err := l.script.Run(ctx, l.client, []string{key},
		formatFloat(rate),
		formatFloat(capacity),
		formatFloat(nowSeconds),
	).Result()
	if err != nil {
		return nil, err
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) < 4 {
		return nil, fmt.Errorf("unexpected rate limit script result: %v", raw)
	}

	result.Allowed = toInt(values[0]) == 1
	result.Remaining = toInt(values[1])
	result.RetryAfter = time.Duration(toFloat(values[2]) * float64(time.Second))
	result.ResetAfter = time.Duration(toFloat(values[3]) * float64(time.Second))

	return result, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 10, 64)
}

func toInt(v interface{}) int {
	switch value := v.(type) {
	case int64:
		return int(value)
	case int:
		return value
	case float64:
		return int(value)
	case string:
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func toFloat(v interface{}) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case int64:
		return float64(value)
	case int:
		return float64(value)
	case string:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
