package app

import (
	"sync"

	"growth-quiz-service/internal/domain"
)

// StatsFeed fans out stats updates for one quiz to live subscribers.
type StatsFeed struct {
	mu          sync.Mutex
	latest      domain.QuizStats
	subscribers map[chan domain.QuizStats]struct{}
}

func newStatsFeed(initial domain.QuizStats) *StatsFeed {
	return &StatsFeed{
		latest:      initial,
		subscribers: make(map[chan domain.QuizStats]struct{}),
	}
}

func (f *StatsFeed) subscribe() chan domain.QuizStats {
	ch := make(chan domain.QuizStats, 8)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers[ch] = struct{}{}
	// the buffer is empty, so this cannot block, and no broadcast can overtake it
	ch <- f.latest
	return ch
}

// unsubscribe closes ch and reports whether the feed has no subscribers left.
func (f *StatsFeed) unsubscribe(ch chan domain.QuizStats) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subscribers[ch]; ok {
		delete(f.subscribers, ch)
		close(ch)
	}
	return len(f.subscribers) == 0
}

func (f *StatsFeed) broadcast(stats domain.QuizStats) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// concurrent Record calls may publish out of order
	if stats.TotalAttempts < f.latest.TotalAttempts {
		return
	}
	f.latest = stats
	for ch := range f.subscribers {
		select {
		case ch <- stats:
		default:
			// drop the stale update so a slow reader never blocks scoring
			select {
			case <-ch:
			default:
			}
			ch <- stats
		}
	}
}
