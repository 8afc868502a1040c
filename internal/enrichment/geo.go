package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dustinwells/sprinter-leads/internal/submissions"
	"github.com/dustinwells/sprinter-leads/pkg/httpclient"
	"github.com/dustinwells/sprinter-leads/pkg/logger"
)

const geoFields = "country,countryCode,regionName,city,isp,proxy,hosting"

// geoResponse mirrors the upstream lookup payload.
type geoResponse struct {
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	RegionName  string `json:"regionName"`
	City        string `json:"city"`
	ISP         string `json:"isp"`
	Proxy       bool   `json:"proxy"`
	Hosting     bool   `json:"hosting"`
}

// GeoClient resolves client IPs to coarse location data. Lookups are
// best-effort: any failure yields nil geo data rather than an error, because
// a slow or broken lookup must never block a form submission.
type GeoClient struct {
	client   *httpclient.Client
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewGeoClient creates a geo lookup client. cache may be nil to disable
// caching.
func NewGeoClient(client *httpclient.Client, cache *redis.Client, cacheTTL time.Duration) *GeoClient {
	return &GeoClient{
		client:   client,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Lookup resolves an IP to geo data. Returns nil for unknown, loopback, or
// private addresses without making a network call, and nil on any lookup
// failure.
func (g *GeoClient) Lookup(ctx context.Context, ip string) *submissions.GeoData {
	if !lookupable(ip) {
		return nil
	}

	if cached := g.fromCache(ctx, ip); cached != nil {
		return cached
	}

	var resp geoResponse
	path := fmt.Sprintf("/json/%s?fields=%s", ip, geoFields)
	if err := g.client.GetJSON(ctx, path, &resp); err != nil {
		logger.WithContext(ctx).Warn("geo lookup failed",
			zap.String("ip", ip),
			zap.Error(err))
		return nil
	}

	data := &submissions.GeoData{
		Country:     resp.Country,
		CountryCode: resp.CountryCode,
		Region:      resp.RegionName,
		City:        resp.City,
		ISP:         resp.ISP,
		Proxy:       resp.Proxy,
		Hosting:     resp.Hosting,
	}

	g.toCache(ctx, ip, data)
	return data
}

// lookupable filters out addresses the upstream cannot resolve: the literal
// "unknown" placeholder, unparseable strings, and loopback/private/link-local
// ranges.
func lookupable(ip string) bool {
	if ip == "" || ip == "unknown" {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() || parsed.IsUnspecified() {
		return false
	}
	return true
}

func geoCacheKey(ip string) string {
	return "geo:ip:" + ip
}

func (g *GeoClient) fromCache(ctx context.Context, ip string) *submissions.GeoData {
	if g.cache == nil {
		return nil
	}

	raw, err := g.cache.Get(ctx, geoCacheKey(ip)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.WithContext(ctx).Warn("geo cache read failed", zap.Error(err))
		}
		return nil
	}

	var data submissions.GeoData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	return &data
}

func (g *GeoClient) toCache(ctx context.Context, ip string, data *submissions.GeoData) {
	if g.cache == nil {
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := g.cache.Set(ctx, geoCacheKey(ip), raw, g.cacheTTL).Err(); err != nil {
		logger.WithContext(ctx).Warn("geo cache write failed", zap.Error(err))
	}
}
