// Package voice runs the hands-free conversation loop: listen for one
// utterance, hand it to the responder, speak the reply, listen again.
// One turn is always fully finished before the next one starts; there is
// no barge-in and no concurrent recognition.
package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Phase is where the loop currently is in its cycle.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseListening
	PhaseProcessing
	PhaseSpeaking
	PhaseMuted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseListening:
		return "listening"
	case PhaseProcessing:
		return "processing"
	case PhaseSpeaking:
		return "speaking"
	case PhaseMuted:
		return "muted"
	default:
		return "unknown"
	}
}

// Responder handles one recognized utterance and returns the reply to
// speak. An empty reply means there is nothing to say this turn.
type Responder func(ctx context.Context, utterance string) (string, error)

// Speaker plays one reply aloud.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

const turnFailedReply = "Sorry, something went wrong. Please try again."

// Config wires the loop's three collaborators.
type Config struct {
	Recognizer Recognizer
	Respond    Responder
	Speaker    Speaker
	Logger     *zap.Logger
}

// Loop drives the listen/process/speak cycle on a single goroutine.
type Loop struct {
	recognizer Recognizer
	respond    Responder
	speaker    Speaker
	logger     *zap.Logger

	phase atomic.Int32
	// busy gates re-entry into a turn. The loop itself is sequential, so
	// the flag only trips when a recognizer delivers buffered input while
	// a turn is still in flight; those utterances are dropped.
	busy atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

func New(cfg Config) (*Loop, error) {
	if cfg.Recognizer == nil {
		return nil, fmt.Errorf("voice loop needs a recognizer")
	}
	if cfg.Respond == nil {
		return nil, fmt.Errorf("voice loop needs a responder")
	}
	if cfg.Speaker == nil {
		return nil, fmt.Errorf("voice loop needs a speaker")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Loop{
		recognizer: cfg.Recognizer,
		respond:    cfg.Respond,
		speaker:    cfg.Speaker,
		logger:     cfg.Logger,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}, nil
}

// Start begins the loop. It returns immediately; use Done to wait for the
// loop to finish on its own and Stop to end it from outside.
func (l *Loop) Start() {
	l.wg.Add(1)
	go l.run()
}

// Stop ends the loop and releases the recognizer. Safe to call after the
// loop has already finished on its own.
func (l *Loop) Stop() {
	l.cancel()
	l.wg.Wait()
	if err := l.recognizer.Close(); err != nil {
		l.logger.Warn("failed to close recognizer", zap.Error(err))
	}
}

// Done is closed when the loop finishes, whether from an exit word, input
// running out, or Stop.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Phase reports where the loop currently is.
func (l *Loop) Phase() Phase {
	return Phase(l.phase.Load())
}

func (l *Loop) setPhase(p Phase) {
	l.phase.Store(int32(p))
}

func (l *Loop) run() {
	defer l.wg.Done()
	defer close(l.done)
	defer l.setPhase(PhaseIdle)

	for {
		if l.ctx.Err() != nil {
			return
		}

		if l.Phase() != PhaseMuted {
			l.setPhase(PhaseListening)
		}

		utterance, err := l.recognizer.Listen(l.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) || l.ctx.Err() != nil {
				return
			}
			l.logger.Warn("recognition failed", zap.Error(err))
			continue
		}

		command := normalize(utterance)
		if command == "" {
			continue
		}

		// Control words work even while muted; everything else is
		// discarded until unmute.
		switch {
		case isExitWord(command):
			l.speak("Goodbye!")
			return
		case command == "mute":
			l.setPhase(PhaseMuted)
			continue
		case command == "unmute":
			if l.Phase() == PhaseMuted {
				l.setPhase(PhaseListening)
			}
			continue
		}

		if l.Phase() == PhaseMuted {
			continue
		}

		if !l.busy.CompareAndSwap(false, true) {
			l.logger.Debug("turn in flight, dropping utterance")
			continue
		}
		l.handleTurn(utterance)
		l.busy.Store(false)
	}
}

func (l *Loop) handleTurn(utterance string) {
	l.setPhase(PhaseProcessing)

	reply, err := l.respond(l.ctx, utterance)
	if err != nil {
		if l.ctx.Err() != nil {
			return
		}
		l.logger.Warn("turn failed", zap.Error(err))
		reply = turnFailedReply
	}
	if reply == "" {
		return
	}

	l.speak(reply)
}

func (l *Loop) speak(text string) {
	l.setPhase(PhaseSpeaking)
	if err := l.speaker.Speak(l.ctx, text); err != nil && l.ctx.Err() == nil {
		l.logger.Warn("speech playback failed", zap.Error(err))
	}
}

func normalize(utterance string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(utterance)), ".!? ")
}

func isExitWord(command string) bool {
	switch command {
	case "exit", "quit", "goodbye":
		return true
	}
	return false
}
