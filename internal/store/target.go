package store

import (
	"strings"
	"time"
)

// Sentinel values stored in [Target.Code] and [Target.LastCheck].
const (
	// CodeNone marks a target that was never checked.
	CodeNone = "-"
	// CodeTransport marks a transport failure (DNS, refused, timeout).
	CodeTransport = "ERR"
	// CodeProxy marks a proxy-specific failure.
	CodeProxy = "PRX"
	// LastCheckNone marks a target that was never checked.
	LastCheckNone = "-"
)

// WIB is the fixed UTC+7 zone used for every human-readable timestamp.
var WIB = time.FixedZone("WIB", 7*60*60)

// FormatClock renders t as HH:MM:SS in [WIB].
func FormatClock(t time.Time) string {
	return t.In(WIB).Format(time.TimeOnly)
}

// Target is one monitored URL and the result of its latest check.
type Target struct {
	// URL always carries a scheme; see [NormalizeURL].
	URL string `json:"url"`

	// Status is the classification of the latest check.
	Status Status `json:"status"`

	// Code is the HTTP status code as a string, or one of the sentinels
	// [CodeNone], [CodeTransport], [CodeProxy].
	Code string `json:"code"`

	// Latency is the measured round trip in whole milliseconds, 0 if none.
	Latency int64 `json:"latency"`

	// LastCheck is the HH:MM:SS (WIB) completion time of the latest check.
	LastCheck string `json:"last_check"`
}

// NewPendingTarget returns the placeholder entry for a URL never checked.
func NewPendingTarget(url string) Target {
	return Target{
		URL:       url,
		Status:    Pending(),
		Code:      CodeNone,
		Latency:   0,
		LastCheck: LastCheckNone,
	}
}

// NormalizeURL trims raw and prepends https:// when it does not start with
// "http". It returns "" for blank input.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if !strings.HasPrefix(u, "http") {
		u = "https://" + u
	}
	return u
}

// ApplyEdit builds the new target list for an edited set of raw URLs.
//
// Each non-blank raw URL is normalised with [NormalizeURL] and looked up by
// exact string match in old. A match carries its result fields forward
// unchanged; a new URL gets the [NewPendingTarget] placeholder. Output order
// follows rawURLs; a URL repeated in rawURLs is kept once, at its first
// position.
func ApplyEdit(old []Target, rawURLs []string) []Target {
	previous := make(map[string]Target, len(old))
	for _, t := range old {
		if _, exists := previous[t.URL]; !exists {
			previous[t.URL] = t
		}
	}

	result := make([]Target, 0, len(rawURLs))
	seen := make(map[string]struct{}, len(rawURLs))
	for _, raw := range rawURLs {
		u := NormalizeURL(raw)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}

		if t, ok := previous[u]; ok {
			result = append(result, t)
			continue
		}
		result = append(result, NewPendingTarget(u))
	}
	return result
}

// SplitURLList splits newline-separated text (the admin edit box) into raw
// URL entries. Blank lines are dropped; normalisation is left to [ApplyEdit].
func SplitURLList(text string) []string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Summary aggregates a target list for observers.
type Summary struct {
	Total    int            `json:"total"`
	Safe     int            `json:"safe"`
	Problems int            `json:"problems"`
	ByStatus map[string]int `json:"by_status"`
}

// Summarize counts targets by display status. Everything that is not
// [KindSafe], pending entries included, counts as a problem.
func Summarize(targets []Target) Summary {
	s := Summary{
		Total:    len(targets),
		ByStatus: make(map[string]int),
	}
	for _, t := range targets {
		if t.Status.IsSafe() {
			s.Safe++
		}
		s.ByStatus[t.Status.String()]++
	}
	s.Problems = s.Total - s.Safe
	return s
}

func copyTargets(targets []Target) []Target {
	cp := make([]Target, len(targets))
	copy(cp, targets)
	return cp
}
