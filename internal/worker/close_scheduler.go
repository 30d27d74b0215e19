package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// CloseScheduler runs delayed channel deletions. A pending deletion is
// dropped when Cancel is called for its channel, which happens when the
// platform reports the channel gone before the delay elapses.
type CloseScheduler struct {
	clock  clockwork.Clock
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string][]*pendingClose
}

type pendingClose struct {
	cancelled chan struct{}
	once      sync.Once
}

func (p *pendingClose) cancel() {
	p.once.Do(func() { close(p.cancelled) })
}

// NewCloseScheduler creates a scheduler driven by clock.
func NewCloseScheduler(clock clockwork.Clock, logger *zap.Logger) *CloseScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloseScheduler{
		clock:   clock,
		logger:  logger.Named("close_scheduler"),
		pending: make(map[string][]*pendingClose),
	}
}

// Schedule blocks for delay and then runs fn, unless the channel was
// cancelled in the meantime. Cancellation of ctx does not shorten the wait;
// fn receives a context detached from ctx's cancellation. ran reports
// whether fn was invoked.
func (s *CloseScheduler) Schedule(ctx context.Context, channelID string, delay time.Duration, fn func(context.Context) error) (ran bool, err error) {
	p := s.add(channelID)
	defer s.remove(channelID, p)

	select {
	case <-s.clock.After(delay):
	case <-p.cancelled:
		s.logger.Info("scheduled close dropped", zap.String("channel_id", channelID))
		return false, nil
	}

	select {
	case <-p.cancelled:
		s.logger.Info("scheduled close dropped", zap.String("channel_id", channelID))
		return false, nil
	default:
	}
	return true, fn(context.WithoutCancel(ctx))
}

// Cancel drops every pending deletion for channelID.
func (s *CloseScheduler) Cancel(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pending[channelID] {
		p.cancel()
	}
}

// Pending returns the number of deletions waiting on their delay.
func (s *CloseScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, list := range s.pending {
		n += len(list)
	}
	return n
}

func (s *CloseScheduler) add(channelID string) *pendingClose {
	p := &pendingClose{cancelled: make(chan struct{})}
	s.mu.Lock()
	s.pending[channelID] = append(s.pending[channelID], p)
	s.mu.Unlock()
	return p
}

func (s *CloseScheduler) remove(channelID string, p *pendingClose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.pending[channelID]
	for i, candidate := range list {
		if candidate == p {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(s.pending, channelID)
		return
	}
	s.pending[channelID] = list
}
