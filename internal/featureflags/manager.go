// Package featureflags evaluates FEATURE_FLAGS rollouts per user.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Known flags.
const (
	// MetadataEnrichment gates YouTube lookups during link ingestion.
	MetadataEnrichment = "metadata_enrichment"
	// RealtimeNotifications gates publishing ingest events to websocket clients.
	RealtimeNotifications = "realtime_notifications"
)

// defaults apply when a known flag is absent from the config string.
var defaults = map[string]bool{
	MetadataEnrichment:    true,
	RealtimeNotifications: true,
}

// Manager evaluates flags defined as "name=value" pairs, e.g.
// "metadata_enrichment=on,realtime_notifications=25%".
type Manager struct {
	flags map[string]string
}

// NewManager parses a comma-separated flag string. Malformed pairs are ignored.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled reports whether name is on for userID. Values are on/true/1,
// off/false/0, or N% for a deterministic per-user rollout. Unknown values
// are off; absent flags fall back to their default.
func (m *Manager) Enabled(name string, userID uint) bool {
	name = normalize(name)
	if m == nil {
		return defaults[name]
	}

	value, ok := m.flags[name]
	if !ok {
		return defaults[name]
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if userID == 0 {
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Snapshot evaluates every configured and default flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(defaults))
	for name := range defaults {
		out[name] = m.Enabled(name, userID)
	}
	if m != nil {
		for name := range m.flags {
			out[name] = m.Enabled(name, userID)
		}
	}
	return out
}

// Names lists configured flag names in sorted order.
func (m *Manager) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.flags))
	for k := range m.flags {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", name, userID)
	return int(h.Sum32() % 100)
}
