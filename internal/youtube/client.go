package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"linkshelf/internal/middleware"
	"linkshelf/internal/models"
	"linkshelf/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const (
	DefaultAPIURL  = "https://www.googleapis.com/youtube/v3/videos"
	defaultTimeout = 8 * time.Second
	// API responses are small; anything past this is not a videos.list payload.
	maxResponseBytes = 1 << 20
)

// Outcome classifies a metadata lookup.
type Outcome string

const (
	OutcomeHit   Outcome = "hit"
	OutcomeMiss  Outcome = "miss"
	OutcomeError Outcome = "error"
)

// Result is what Fetch returns. Metadata is set only for OutcomeHit and
// Err only for OutcomeError.
type Result struct {
	Outcome  Outcome
	Metadata *models.VideoMetadata
	Err      error
}

// Config configures a Client.
type Config struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond int
	HTTPClient    *http.Client
}

// Client calls the videos.list endpoint of the YouTube Data API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a Client from cfg, filling in defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RatePerSecond)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		limiter:    limiter,
	}
}

type videosResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		ChannelTitle string   `json:"channelTitle"`
		PublishedAt  string   `json:"publishedAt"`
		Tags         []string `json:"tags"`
		Thumbnails   map[string]struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
}

// Fetch looks up videoID. It never returns an error value or panics; every
// failure is folded into the Result and logged.
func (c *Client) Fetch(ctx context.Context, videoID string) (res Result) {
	ctx, span := observability.StartClientSpan(ctx, "youtube.videos.list",
		attribute.String("youtube.video_id", videoID))

	defer func() {
		if r := recover(); r != nil {
			res = Result{Outcome: OutcomeError, Err: fmt.Errorf("panic during metadata fetch: %v", r)}
		}
		observability.MetadataFetches.WithLabelValues(string(res.Outcome)).Inc()
		if res.Outcome != OutcomeHit {
			attrs := []any{slog.String("video_id", videoID), slog.String("outcome", string(res.Outcome))}
			if res.Err != nil {
				attrs = append(attrs, slog.String("error", res.Err.Error()))
			}
			middleware.Logger.WarnContext(ctx, "video metadata unavailable", attrs...)
		}
		span.SetAttributes(attribute.String("youtube.outcome", string(res.Outcome)))
		observability.EndSpan(span, res.Err)
	}()

	if videoID == "" || c.apiKey == "" {
		return Result{Outcome: OutcomeMiss}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Result{Outcome: OutcomeError, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	item, err := c.get(ctx, videoID)
	if err != nil {
		return Result{Outcome: OutcomeError, Err: err}
	}
	if item == nil {
		return Result{Outcome: OutcomeMiss}
	}
	return Result{Outcome: OutcomeHit, Metadata: normalize(item)}
}

func (c *Client) get(ctx context.Context, videoID string) (*videoItem, error) {
	q := url.Values{}
	q.Set("part", "snippet,contentDetails,statistics")
	q.Set("id", videoID)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("youtube api returned status %d", resp.StatusCode)
	}

	var payload videosResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(payload.Items) == 0 {
		return nil, nil
	}
	return &payload.Items[0], nil
}

func normalize(item *videoItem) *models.VideoMetadata {
	md := &models.VideoMetadata{
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		ChannelTitle: item.Snippet.ChannelTitle,
		ThumbnailURL: pickThumbnail(item.Snippet.Thumbnails),
		Tags:         item.Snippet.Tags,
		ViewCount:    parseCount(item.Statistics.ViewCount),
		LikeCount:    parseCount(item.Statistics.LikeCount),
		CommentCount: parseCount(item.Statistics.CommentCount),
	}

	if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		md.PublishedAt = &t
	}
	if secs, ok := ParseISODuration(item.ContentDetails.Duration); ok {
		md.DurationSeconds = &secs
	}
	return md
}

func pickThumbnail(thumbs map[string]struct {
	URL string `json:"url"`
}) string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := thumbs[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

func parseCount(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// Configured reports whether lookups will reach the network.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}
