package healthmetrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/ItIsYeBananaduck/git-fit/internal/intensity"
	"github.com/ItIsYeBananaduck/git-fit/internal/telemetry/tracing"
)

// DefaultCollectTimeout bounds a single health metrics fetch. Collection is
// best-effort and must never block workout completion.
const DefaultCollectTimeout = 3 * time.Second

const metricsCacheExpireSeconds = 60 * 60

// Window is the workout time window a health reading covers.
type Window struct {
	UserID string
	From   time.Time
	To     time.Time
}

func (w Window) cacheKey() []byte {
	return []byte(fmt.Sprintf("%s::%d::%d", w.UserID, w.From.Unix(), w.To.Unix()))
}

// Collector fetches physiological readings from the external device
// collector for a workout window.
type Collector interface {
	Collect(ctx context.Context, window Window) (*intensity.HealthMetrics, error)
}

// HTTPCollector talks to the external health metrics collaborator.
type HTTPCollector struct {
	baseURL    string
	httpClient *http.Client
	cache      *freecache.Cache
}

func NewHTTPCollector(baseURL string, httpClient *http.Client) *HTTPCollector {
	megabyte := 1024 * 1024
	return &HTTPCollector{
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      freecache.NewCache(10 * megabyte),
	}
}

func (c *HTTPCollector) Collect(ctx context.Context, window Window) (_ *intensity.HealthMetrics, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "healthmetrics.collect")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if cached, cacheErr := c.cache.Get(window.cacheKey()); cacheErr == nil {
		var metrics intensity.HealthMetrics
		if err := json.Unmarshal(cached, &metrics); err == nil {
			span.SetStatus(codes.Ok, "metrics cache hit")
			return &metrics, nil
		}
		log.Tracef("failed to unmarshal cached health metrics for %s", window.UserID)
	}

	url := fmt.Sprintf(
		"%s/health-metrics?user=%s&from=%d&to=%d",
		c.baseURL, window.UserID, window.From.Unix(), window.To.Unix(),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get health metrics: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warnf("close health metrics response body: %s", err)
		}
	}()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		// no reading for this window, not an error
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected collector status: %d", resp.StatusCode)
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var metrics intensity.HealthMetrics
	if err := json.Unmarshal(respBytes, &metrics); err != nil {
		return nil, fmt.Errorf("unmarshal health metrics: %w", err)
	}

	if err := c.cache.Set(window.cacheKey(), respBytes, metricsCacheExpireSeconds); err != nil {
		log.Tracef("failed to cache health metrics: %s", err)
	}

	return &metrics, nil
}

// CollectBestEffort wraps a collector with the bounded timeout and swallows
// every failure: an absent reading degrades the score to zero contribution,
// it never fails or delays the weekly run.
func CollectBestEffort(
	ctx context.Context,
	collector Collector,
	window Window,
	timeout time.Duration,
) *intensity.HealthMetrics {
	if collector == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultCollectTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	metrics, err := collector.Collect(ctx, window)
	if err != nil {
		log.Tracef("health metrics unavailable for %s: %s", window.UserID, err)
		return nil
	}
	return metrics
}
