package main

import (
	"context"
	"time"

	"github.com/ganot/recital/internal/domain/capture"
	"github.com/ganot/recital/internal/domain/playback"
)

// Synthetic capture and output capabilities so the demo can run without a
// real microphone or speaker.

type synthStream struct{}

func (*synthStream) Close() error { return nil }

type synthDevice struct{}

func (*synthDevice) AcquireInputStream(ctx context.Context) (capture.InputStream, error) {
	return &synthStream{}, nil
}

type synthEncoded struct {
	ch   chan []byte
	stop chan struct{}
}

func (e *synthEncoded) Chunks() <-chan []byte { return e.ch }

func (e *synthEncoded) Finalize(ctx context.Context) error {
	close(e.stop)
	return nil
}

type synthEncoder struct{}

func (*synthEncoder) SupportedFormats() []string {
	return []string{"audio/webm", "audio/webm;codecs=opus"}
}

func (*synthEncoder) Encode(ctx context.Context, stream capture.InputStream, format string, bitrateHint int) (capture.EncodedStream, error) {
	e := &synthEncoded{
		ch:   make(chan []byte, 8),
		stop: make(chan struct{}),
	}
	go func() {
		defer close(e.ch)
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		n := byte(0)
		for {
			select {
			case <-e.stop:
				return
			case <-ticker.C:
				chunk := make([]byte, 256)
				for i := range chunk {
					chunk[i] = n
					n++
				}
				e.ch <- chunk
			}
		}
	}()
	return e, nil
}

type synthOutputStream struct {
	done chan struct{}
}

func (s *synthOutputStream) Done() <-chan struct{} { return s.done }

func (s *synthOutputStream) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}

type synthOutput struct{}

func (*synthOutput) Play(ctx context.Context, payload []byte, format string) (playback.OutputStream, error) {
	s := &synthOutputStream{done: make(chan struct{})}
	go func() {
		// Pretend the clip takes half a second to play out.
		select {
		case <-time.After(500 * time.Millisecond):
			s.Close()
		case <-s.done:
		}
	}()
	return s, nil
}
