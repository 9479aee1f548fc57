// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"

	"linkshelf/internal/models"
	"linkshelf/internal/storage"
	"linkshelf/internal/youtube"

	"github.com/google/uuid"
)

// FetcherStub answers metadata lookups from a fixed table. Unknown IDs miss.
type FetcherStub struct {
	mu      sync.Mutex
	results map[string]youtube.Result
	calls   []string
}

// NewFetcherStub creates a FetcherStub with no known videos.
func NewFetcherStub() *FetcherStub {
	return &FetcherStub{results: make(map[string]youtube.Result)}
}

// Hit registers metadata returned for videoID.
func (f *FetcherStub) Hit(videoID string, md *models.VideoMetadata) *FetcherStub {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[videoID] = youtube.Result{Outcome: youtube.OutcomeHit, Metadata: md}
	return f
}

// Fail makes lookups of videoID report an error outcome.
func (f *FetcherStub) Fail(videoID string, err error) *FetcherStub {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[videoID] = youtube.Result{Outcome: youtube.OutcomeError, Err: err}
	return f
}

// Fetch implements service.MetadataFetcher.
func (f *FetcherStub) Fetch(_ context.Context, videoID string) youtube.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, videoID)
	if res, ok := f.results[videoID]; ok {
		return res
	}
	return youtube.Result{Outcome: youtube.OutcomeMiss}
}

// Calls returns the video IDs looked up so far.
func (f *FetcherStub) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// MemoryStore is an in-memory storage.Store.
type MemoryStore struct {
	mu      sync.Mutex
	BaseURL string
	files   map[string][]byte
	// UploadErr, when set, fails every Upload.
	UploadErr error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{BaseURL: "http://blobs.test", files: make(map[string][]byte)}
}

// Upload copies the file at localPath into memory.
func (s *MemoryStore) Upload(_ context.Context, localPath string, _ uint) (*storage.StoredFile, error) {
	if s.UploadErr != nil {
		return nil, s.UploadErr
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.files[id] = data
	s.mu.Unlock()

	return &storage.StoredFile{
		FileID:     id,
		PreviewURL: fmt.Sprintf("%s/storage/files/%s/view", s.BaseURL, id),
	}, nil
}

// Delete removes fileID and reports whether it existed.
func (s *MemoryStore) Delete(_ context.Context, fileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[fileID]; !ok {
		return false
	}
	delete(s.files, fileID)
	return true
}

// Get returns the stored bytes for fileID.
func (s *MemoryStore) Get(fileID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[fileID]
	return data, ok
}

// Len reports how many blobs are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// PublishedEvent is one call recorded by RecordingPublisher.
type PublishedEvent struct {
	UserID  uint
	Type    string
	Payload any
}

// RecordingPublisher records events instead of sending them.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
	Err    error
}

// PublishEvent implements service.EventPublisher.
func (p *RecordingPublisher) PublishEvent(_ context.Context, userID uint, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{UserID: userID, Type: eventType, Payload: payload})
	return p.Err
}

// Events returns the recorded events.
func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent(nil), p.events...)
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
