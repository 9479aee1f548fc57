package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantID string
		wantOK bool
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch extra params", "https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ", true},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"music host", "https://music.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"shorts", "https://www.youtube.com/shorts/a1_B2-c3D4e", "a1_B2-c3D4e", true},
		{"too short", "https://youtu.be/abc", "", false},
		{"bad charset", "https://youtu.be/abc$%^&*()!", "", false},
		{"other site", "https://vimeo.com/123456789", "", false},
		{"plain text", "not a url", "", false},
		{"channel page", "https://www.youtube.com/@someone", "", false},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"upper-case host", "https://WWW.YouTube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"look-alike domain", "https://notyoutube.com/watch?v=dQw4w9WgXcQ", "", false},
		{"look-alike short domain", "https://notyoutu.be/dQw4w9WgXcQ", "", false},
		{"short link in path", "https://example.com/blog/youtu.be/dQw4w9WgXcQ", "", false},
		{"link in query", "https://evil.example/?next=https://youtube.com/shorts/dQw4w9WgXcQ", "", false},
		{"suffix host", "https://youtube.com.evil.example/watch?v=dQw4w9WgXcQ", "", false},
		{"watch without v", "https://www.youtube.com/watch?list=PL123", "", false},
		{"ftp scheme", "ftp://youtube.com/watch?v=dQw4w9WgXcQ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractVideoID(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"PT1H2M10S", 3730, true},
		{"PT3M20S", 200, true},
		{"PT45S", 45, true},
		{"PT2H", 7200, true},
		{"", 0, false},
		{"garbage", 0, false},
		{"P1D", 0, false},
		{"PT", 0, false},
		{"PTabc", 0, false},
		{"PT5Mjunk", 0, false},
		{"PT0S", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseISODuration(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

const videoPayload = `{
  "items": [{
    "id": "dQw4w9WgXcQ",
    "snippet": {
      "title": "Never Gonna Give You Up",
      "description": "Official video",
      "channelTitle": "Rick Astley",
      "publishedAt": "2009-10-25T06:57:33Z",
      "tags": ["music", "80s"],
      "thumbnails": {
        "default": {"url": "https://i.ytimg.com/default.jpg"},
        "high": {"url": "https://i.ytimg.com/hq.jpg"}
      }
    },
    "contentDetails": {"duration": "PT3M33S"},
    "statistics": {"viewCount": "1500000000", "likeCount": "17000000"}
  }]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 2 * time.Second}), &calls
}

func TestClientFetch_Hit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "snippet,contentDetails,statistics", r.URL.Query().Get("part"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(videoPayload))
	})

	res := c.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.Equal(t, OutcomeHit, res.Outcome)
	require.NoError(t, res.Err)
	md := res.Metadata
	require.NotNil(t, md)

	assert.Equal(t, "Never Gonna Give You Up", md.Title)
	assert.Equal(t, "Rick Astley", md.ChannelTitle)
	assert.Equal(t, "https://i.ytimg.com/hq.jpg", md.ThumbnailURL)
	assert.Equal(t, []string{"music", "80s"}, md.Tags)
	require.NotNil(t, md.DurationSeconds)
	assert.Equal(t, 213, *md.DurationSeconds)
	require.NotNil(t, md.ViewCount)
	assert.Equal(t, int64(1500000000), *md.ViewCount)
	assert.Nil(t, md.CommentCount, "absent counters stay nil")
	require.NotNil(t, md.PublishedAt)
	assert.Equal(t, 2009, md.PublishedAt.Year())
}

func TestClientFetch_EmptyItemsIsMiss(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items": []}`))
	})

	res := c.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.Equal(t, OutcomeMiss, res.Outcome)
	assert.Nil(t, res.Metadata)
	assert.NoError(t, res.Err)
}

func TestClientFetch_Non2xxIsError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403}}`))
	})

	res := c.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.Equal(t, OutcomeError, res.Outcome)
	assert.Error(t, res.Err)
	assert.Nil(t, res.Metadata)
}

func TestClientFetch_MalformedPayloadIsError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items": [`))
	})

	res := c.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.Equal(t, OutcomeError, res.Outcome)
	assert.Error(t, res.Err)
}

func TestClientFetch_TransportFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second})
	res := c.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.Equal(t, OutcomeError, res.Outcome)
}

func TestClientFetch_MissingKeySkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	assert.False(t, c.Configured())

	res := c.Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.Equal(t, OutcomeMiss, res.Outcome)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClientFetch_EmptyIDIsMiss(t *testing.T) {
	c, calls := newTestClient(t, func(http.ResponseWriter, *http.Request) {})

	res := c.Fetch(context.Background(), "")
	assert.Equal(t, OutcomeMiss, res.Outcome)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestClientFetch_CanceledContextDuringThrottle(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(videoPayload))
	})
	c.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	require.Equal(t, OutcomeHit, c.Fetch(context.Background(), "dQw4w9WgXcQ").Outcome)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	res := c.Fetch(ctx, "dQw4w9WgXcQ")
	assert.Equal(t, OutcomeError, res.Outcome)
}
