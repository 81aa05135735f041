package store

import "sync"

// subscriberBuffer is the channel capacity given to each subscriber.
const subscriberBuffer = 16

// Store defines the persistence and subscription operations for target lists.
//
// Store implementations must be safe for concurrent access. Persistence is
// whole-list: Save and Update replace the previous list, there are no
// per-target patches.
type Store interface {
	// Load returns the persisted list, or an empty list if nothing usable is
	// stored. It never fails.
	Load() []Target

	// Save replaces the persisted list and notifies subscribers.
	Save(targets []Target) error

	// Update applies fn to the current list and saves the result, with no
	// other Save or Update of the same store in between. It returns the
	// saved list. When fn returns nil nothing is written and Update returns
	// nil, nil.
	Update(fn func([]Target) []Target) ([]Target, error)

	// Initialized reports whether a list has ever been persisted.
	Initialized() bool

	// Subscribe returns a channel that receives every saved list.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan []Target

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan []Target)
}

// Seed writes a single pending seed target when st has never been
// initialised, and returns the current list otherwise.
func Seed(st Store, seedURL string) ([]Target, error) {
	if st.Initialized() {
		return st.Load(), nil
	}

	targets := []Target{}
	if u := NormalizeURL(seedURL); u != "" {
		targets = append(targets, NewPendingTarget(u))
	}
	if err := st.Save(targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// Edit merges rawURLs into the current list with [ApplyEdit] and saves the
// result. It returns the saved list.
func Edit(st Store, rawURLs []string) ([]Target, error) {
	return st.Update(func(current []Target) []Target {
		return ApplyEdit(current, rawURLs)
	})
}

// RecordResult copies the result fields of checked into the entry of the
// current list with the same URL and saves the list. Entries added or
// removed since the caller read the list are left as they are; when the URL
// is no longer listed nothing is written and found is false.
func RecordResult(st Store, checked Target) (found bool, err error) {
	_, err = st.Update(func(current []Target) []Target {
		for i := range current {
			if current[i].URL == checked.URL {
				current[i].Status = checked.Status
				current[i].Code = checked.Code
				current[i].Latency = checked.Latency
				current[i].LastCheck = checked.LastCheck
				found = true
				return current
			}
		}
		return nil
	})
	return found, err
}

// hub fans saved lists out to subscribers.
type hub struct {
	subMu       sync.RWMutex
	subscribers map[chan []Target]struct{}
}

func newHub() hub {
	return hub{subscribers: make(map[chan []Target]struct{})}
}

func (h *hub) Subscribe() <-chan []Target {
	ch := make(chan []Target, subscriberBuffer)

	h.subMu.Lock()
	h.subscribers[ch] = struct{}{}
	h.subMu.Unlock()

	return ch
}

func (h *hub) Unsubscribe(ch <-chan []Target) {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	for subCh := range h.subscribers {
		if subCh == ch {
			delete(h.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// publish is non-blocking: a full subscriber buffer drops the update for
// that subscriber only.
func (h *hub) publish(targets []Target) {
	h.subMu.RLock()
	defer h.subMu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- copyTargets(targets):
		default:
		}
	}
}
