package client

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrGaveUp = errors.New("gave up reconnecting")

// Backoff grows linearly by Step per attempt and is capped at Max.
type Backoff struct {
	Step        time.Duration
	Max         time.Duration
	MaxAttempts int
}

func DefaultBackoff() Backoff {
	return Backoff{Step: 2 * time.Second, Max: 30 * time.Second, MaxAttempts: 5}
}

// Delay is the wait before the given 1-based attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	d := time.Duration(attempt) * b.Step
	if d > b.Max {
		return b.Max
	}
	return d
}

// Supervisor restores a lost link with bounded retries.
// Lost and Wake may be called from any goroutine; everything else,
// callbacks included, runs on the Run goroutine.
type Supervisor struct {
	Backoff Backoff
	Connect func(ctx context.Context) error

	OnReconnected func()
	OnGiveUp      func(err error)

	lost chan struct{}
	wake chan struct{}
}

func NewSupervisor(b Backoff, connect func(ctx context.Context) error) *Supervisor {
	return &Supervisor{
		Backoff: b,
		Connect: connect,
		lost:    make(chan struct{}, 1),
		wake:    make(chan struct{}, 1),
	}
}

// Lost reports that the link went down.
func (s *Supervisor) Lost() {
	select {
	case s.lost <- struct{}{}:
	default:
	}
}

// Wake asks for one extra attempt outside the schedule. It is a no-op
// while the link is up.
func (s *Supervisor) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Supervisor) Run(ctx context.Context) error {
	logger := log.With().Str("module", "client").Logger()
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		attempt int
		down    bool
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timer, timerC = nil, nil
	}
	defer stopTimer()

	schedule := func() {
		if attempt >= s.Backoff.MaxAttempts {
			logger.Warn().Int("attempts", attempt).Msg("reconnect gave up")
			if s.OnGiveUp != nil {
				s.OnGiveUp(ErrGaveUp)
			}
			return
		}
		attempt++
		delay := s.Backoff.Delay(attempt)
		logger.Info().Int("attempt", attempt).Int("max", s.Backoff.MaxAttempts).Dur("delay", delay).Msg("reconnect scheduled")
		timer = time.NewTimer(delay)
		timerC = timer.C
	}
	try := func() bool {
		if err := s.Connect(ctx); err != nil {
			logger.Warn().Err(err).Msg("reconnect attempt failed")
			return false
		}
		stopTimer()
		attempt, down = 0, false
		logger.Info().Msg("reconnected")
		if s.OnReconnected != nil {
			s.OnReconnected()
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.lost:
			if down {
				continue
			}
			down = true
			attempt = 0
			stopTimer()
			schedule()
		case <-timerC:
			timer, timerC = nil, nil
			if !try() {
				schedule()
			}
		case <-s.wake:
			// Lost may be pending behind this wake.
			select {
			case <-s.lost:
				if !down {
					down = true
					attempt = 0
					stopTimer()
					schedule()
				}
			default:
			}
			if down {
				try()
			}
		}
	}
}
