package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ganot/recital/internal/domain/clip"
)

// ClipSource resolves archived clips for playback. *clip.Service satisfies
// this.
type ClipSource interface {
	Get(ctx context.Context, id string) (*clip.Clip, error)
}

// AudioOutput wraps the platform's audio output primitive. Play resolves
// when decoding begins, not when the clip ends.
type AudioOutput interface {
	Play(ctx context.Context, payload []byte, format string) (OutputStream, error)
}

// OutputStream is one live playback. Done is closed when the stream ends,
// whether the clip ran to completion or Close tore it down early.
type OutputStream interface {
	Done() <-chan struct{}
	Close() error
}

// Controller plays at most one archived clip at a time: Idle → Playing →
// Idle. Every play pairs with exactly one stream release, whether the clip
// ends naturally, is stopped, is replaced, or fails to start.
type Controller struct {
	clips  ClipSource
	output AudioOutput
	logger *slog.Logger

	mu      sync.Mutex
	current *playing
}

// NewController creates a playback controller.
func NewController(clips ClipSource, output AudioOutput, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		clips:  clips,
		output: output,
		logger: logger,
	}
}

type playing struct {
	id      string
	stream  OutputStream
	release sync.Once
}

func (p *playing) stop() {
	p.release.Do(func() {
		p.stream.Close()
	})
}

// Play resolves the clip, stops any in-flight playback, and starts the new
// one. An unknown id fails with clip.ErrClipNotFound before the current
// playback is disturbed. Play returns once output has begun.
func (c *Controller) Play(ctx context.Context, id string) error {
	rec, err := c.clips.Get(ctx, id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.current.stop()
		c.current = nil
	}

	stream, err := c.output.Play(ctx, rec.Payload, rec.Format)
	if err != nil {
		c.logger.Error("starting playback", "clip_id", id, "error", err)
		return fmt.Errorf("%w: clip %s", ErrPlaybackFailed, id)
	}

	p := &playing{id: id, stream: stream}
	c.current = p
	go c.watch(p)

	c.logger.Debug("playback started", "clip_id", id)
	return nil
}

// Stop tears down the current playback. A no-op when idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return
	}
	c.current.stop()
	c.current = nil
}

// Playing reports the id of the clip currently playing, if any.
func (c *Controller) Playing() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return "", false
	}
	return c.current.id, true
}

// watch releases the stream at natural end of clip and clears the current
// slot if this playback still owns it.
func (c *Controller) watch(p *playing) {
	<-p.stream.Done()
	p.stop()

	c.mu.Lock()
	if c.current == p {
		c.current = nil
	}
	c.mu.Unlock()
}
