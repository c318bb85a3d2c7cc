package voice

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// Recognizer yields one utterance per call. Listen blocks until speech is
// recognized, the context is canceled, or the input is exhausted, in which
// case it reports io.EOF.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
	Close() error
}

// LineRecognizer reads utterances as lines of text. It stands in for a
// microphone during terminal sessions and tests; each line is one
// utterance.
type LineRecognizer struct {
	lines     chan string
	closed    chan struct{}
	closeOnce sync.Once
}

func NewLineRecognizer(r io.Reader) *LineRecognizer {
	lr := &LineRecognizer{
		lines:  make(chan string),
		closed: make(chan struct{}),
	}
	go lr.read(r)
	return lr
}

func (lr *LineRecognizer) read(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case lr.lines <- scanner.Text():
		case <-lr.closed:
			return
		}
	}
	close(lr.lines)
}

func (lr *LineRecognizer) Listen(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-lr.closed:
		return "", io.EOF
	case line, ok := <-lr.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

func (lr *LineRecognizer) Close() error {
	lr.closeOnce.Do(func() {
		close(lr.closed)
	})
	return nil
}
