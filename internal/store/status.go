package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which classification a [Status] holds.
type Kind int

const (
	// KindPending marks a target that has not been checked yet.
	KindPending Kind = iota
	// KindSafe means the target answered HTTP 200.
	KindSafe
	// KindBlocked means the target answered HTTP 429, read locally as a
	// likely censorship or rate-limit block.
	KindBlocked
	// KindHTTPError covers every other HTTP status code.
	KindHTTPError
	// KindDown means the request failed at the transport level.
	KindDown
	// KindProxyError means the configured proxy refused or timed out.
	KindProxyError
	// KindTimeoutSlow means HTTP 200 but slower than the configured threshold.
	KindTimeoutSlow
	// KindUnknown holds a display string this package does not recognise,
	// typically from a hand-edited file.
	KindUnknown
)

// Display strings persisted in the target list.
const (
	displayPending     = "PENDING"
	displaySafe        = "AMAN"
	displayBlocked     = "CEK BY BK / NAWALA"
	displayDown        = "DOWN"
	displayProxyError  = "PROXY_ERROR"
	displayTimeoutSlow = "LAMBAT"
	displayErrPrefix   = "ERR "
)

// Status is the classification of a target's latest check.
//
// Status is a closed variant: construct it with [Safe], [Blocked],
// [HTTPError], [Down], [ProxyError], [TimeoutSlow] or [Pending]. The zero
// value is Pending. Status values are comparable with ==.
//
// Status serialises to and from its display string (for example "AMAN" or
// "ERR 404"), which keeps the persisted file readable.
type Status struct {
	kind Kind
	code int
	raw  string
}

// Pending returns the placeholder status of an unchecked target.
func Pending() Status { return Status{kind: KindPending} }

// Safe returns the status for an HTTP 200 response.
func Safe() Status { return Status{kind: KindSafe} }

// Blocked returns the status for an HTTP 429 response.
func Blocked() Status { return Status{kind: KindBlocked} }

// HTTPError returns the status for any other HTTP response code.
func HTTPError(code int) Status { return Status{kind: KindHTTPError, code: code} }

// Down returns the status for a transport failure.
func Down() Status { return Status{kind: KindDown} }

// ProxyError returns the status for a proxy-specific transport failure.
func ProxyError() Status { return Status{kind: KindProxyError} }

// TimeoutSlow returns the status for a 200 response above the slow threshold.
func TimeoutSlow() Status { return Status{kind: KindTimeoutSlow} }

// Kind returns the classification kind.
func (s Status) Kind() Kind { return s.kind }

// Code returns the HTTP code carried by a [KindHTTPError] status, else 0.
func (s Status) Code() int { return s.code }

// IsSafe reports whether the status is [KindSafe].
func (s Status) IsSafe() bool { return s.kind == KindSafe }

// String renders the display string.
func (s Status) String() string {
	switch s.kind {
	case KindSafe:
		return displaySafe
	case KindBlocked:
		return displayBlocked
	case KindHTTPError:
		return displayErrPrefix + strconv.Itoa(s.code)
	case KindDown:
		return displayDown
	case KindProxyError:
		return displayProxyError
	case KindTimeoutSlow:
		return displayTimeoutSlow
	case KindUnknown:
		return s.raw
	default:
		return displayPending
	}
}

// ParseStatus converts a display string back into a [Status].
//
// An empty string is Pending. Unrecognised text is kept verbatim as a
// [KindUnknown] status so that it round-trips unchanged.
func ParseStatus(s string) Status {
	switch s {
	case "", displayPending:
		return Pending()
	case displaySafe:
		return Safe()
	case displayBlocked:
		return Blocked()
	case displayDown:
		return Down()
	case displayProxyError:
		return ProxyError()
	case displayTimeoutSlow:
		return TimeoutSlow()
	}

	if rest, ok := strings.CutPrefix(s, displayErrPrefix); ok {
		if code, err := strconv.Atoi(rest); err == nil && code > 0 {
			return HTTPError(code)
		}
	}
	return Status{kind: KindUnknown, raw: s}
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("status must be a string: %w", err)
	}
	*s = ParseStatus(str)
	return nil
}
