package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ganot/recital/internal/domain/clip"
	"github.com/ganot/recital/internal/hostbridge"
	"github.com/google/uuid"
)

// DefaultFormats is the probe order used when no preference is configured.
// Opus in WebM first, matching what reading-practice clients record best.
var DefaultFormats = []string{
	"audio/webm;codecs=opus",
	"audio/webm",
	"audio/mp4",
	"audio/ogg;codecs=opus",
}

// Config bounds a capture session.
type Config struct {
	// MaxDuration is the hard recording deadline. A session reaching it is
	// forced to stop so a runaway capture cannot exhaust memory or storage.
	MaxDuration time.Duration
	// MaxPayloadBytes is the per-clip payload ceiling. A finalized payload
	// over it is discarded after full resource release.
	MaxPayloadBytes int64
	// BitrateHint is passed through to the encoder, advisory only.
	BitrateHint int
	// Formats is the preference-ordered list of container/codec tags to
	// probe against the encoder. Empty means DefaultFormats.
	Formats []string
}

// DefaultConfig mirrors the reference policy: five-minute ceiling, 5 MiB
// per clip.
func DefaultConfig() Config {
	return Config{
		MaxDuration:     5 * time.Minute,
		MaxPayloadBytes: 5 << 20,
		BitrateHint:     64000,
	}
}

// Result is a finished recording.
type Result struct {
	Payload  clip.Payload
	Duration time.Duration
}

// Session owns at most one live recording at a time: Idle → Recording →
// Idle. Start while recording is rejected without side effects; the hard
// deadline shares the stop path with a caller-initiated stop, so resources
// are released exactly once either way.
type Session struct {
	device  DeviceAudio
	encoder Encoder
	meters  MeterProvider
	bridge  *hostbridge.Coordinator
	cfg     Config
	logger  *slog.Logger

	mu  sync.Mutex
	rec *recording
}

// NewSession creates a capture session. meters and bridge may be nil.
func NewSession(device DeviceAudio, encoder Encoder, meters MeterProvider, bridge *hostbridge.Coordinator, cfg Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Formats) == 0 {
		cfg.Formats = DefaultFormats
	}
	return &Session{
		device:  device,
		encoder: encoder,
		meters:  meters,
		bridge:  bridge,
		cfg:     cfg,
		logger:  logger,
	}
}

// recording holds the transient resources of one live capture.
type recording struct {
	id        string
	stream    InputStream
	encoded   EncodedStream
	meter     Meter
	format    string
	startedAt time.Time
	deadline  *time.Timer

	collectDone chan struct{}
	buf         []byte

	finalizeOnce sync.Once
	finalized    chan struct{}
	stoppedAt    time.Time
	finalizeErr  error
}

// Start acquires the microphone, picks an encoding format and begins
// buffering encoded chunks. Device and format failures are surfaced
// verbatim; every failure path leaves the session Idle with no live
// resources.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec != nil {
		return ErrAlreadyRecording
	}

	stream, err := s.device.AcquireInputStream(ctx)
	if err != nil {
		return err
	}

	format := s.pickFormat()
	if format == "" {
		stream.Close()
		return ErrFormatUnsupported
	}

	encoded, err := s.encoder.Encode(ctx, stream, format, s.cfg.BitrateHint)
	if err != nil {
		stream.Close()
		return fmt.Errorf("starting encoder: %w", err)
	}

	rec := &recording{
		id:          uuid.NewString(),
		stream:      stream,
		encoded:     encoded,
		format:      format,
		startedAt:   time.Now(),
		collectDone: make(chan struct{}),
		finalized:   make(chan struct{}),
	}

	if s.meters != nil {
		meter, err := s.meters.Meter(stream)
		if err != nil {
			s.logger.Debug("level meter unavailable", "recording_id", rec.id, "error", err)
		} else {
			rec.meter = meter
		}
	}

	if s.bridge != nil {
		s.bridge.Suspend()
	}

	go rec.collect()
	rec.deadline = time.AfterFunc(s.cfg.MaxDuration, func() {
		s.logger.Info("recording hit duration ceiling", "recording_id", rec.id)
		s.finalize(rec)
	})

	s.rec = rec
	s.logger.Info("recording started", "recording_id", rec.id, "format", format)
	return nil
}

// Stop finalizes the live recording and returns its payload with measured
// duration. After a deadline-forced stop the finished payload is still
// collected here. An over-ceiling payload is discarded, resources already
// released, and ErrPayloadTooLarge returned.
func (s *Session) Stop(ctx context.Context) (Result, error) {
	s.mu.Lock()
	rec := s.rec
	if rec == nil {
		s.mu.Unlock()
		return Result{}, ErrNotRecording
	}
	s.rec = nil
	s.mu.Unlock()

	s.finalize(rec)
	<-rec.finalized

	if rec.finalizeErr != nil {
		return Result{}, fmt.Errorf("finalizing recording: %w", rec.finalizeErr)
	}

	duration := rec.stoppedAt.Sub(rec.startedAt)
	size := int64(len(rec.buf))
	if size > s.cfg.MaxPayloadBytes {
		s.logger.Warn("recording discarded",
			"recording_id", rec.id,
			"size_bytes", size,
			"ceiling_bytes", s.cfg.MaxPayloadBytes)
		return Result{}, fmt.Errorf("%w: %d bytes over %d byte ceiling", clip.ErrPayloadTooLarge, size, s.cfg.MaxPayloadBytes)
	}

	s.logger.Info("recording finished",
		"recording_id", rec.id,
		"size_bytes", size,
		"duration", duration)
	return Result{
		Payload:  clip.Payload{Bytes: rec.buf, Format: rec.format},
		Duration: duration,
	}, nil
}

// Recording reports whether a capture is in progress (including one stopped
// by the deadline but not yet collected via Stop).
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec != nil
}

// Level reports the live input level, zero when idle or unmetered.
func (s *Session) Level() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil || s.rec.meter == nil {
		return 0
	}
	return s.rec.meter.Level()
}

// finalize releases the recording's transient resources and seals its
// buffer. The deadline timer and a caller stop share this path; the Once
// guarantees a single release.
func (s *Session) finalize(rec *recording) {
	rec.finalizeOnce.Do(func() {
		rec.stoppedAt = time.Now()
		if rec.deadline != nil {
			rec.deadline.Stop()
		}

		if err := rec.encoded.Finalize(context.Background()); err != nil {
			rec.finalizeErr = err
		}
		<-rec.collectDone

		if rec.meter != nil {
			if err := rec.meter.Close(); err != nil {
				s.logger.Debug("closing level meter", "recording_id", rec.id, "error", err)
			}
		}
		if err := rec.stream.Close(); err != nil {
			s.logger.Warn("releasing input stream", "recording_id", rec.id, "error", err)
		}
		if s.bridge != nil {
			s.bridge.Resume()
		}

		close(rec.finalized)
	})
}

// collect drains encoded chunks into the buffer until the encoder closes
// the channel. Zero-length chunks are dropped.
func (r *recording) collect() {
	defer close(r.collectDone)
	for chunk := range r.encoded.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		r.buf = append(r.buf, chunk...)
	}
}

func (s *Session) pickFormat() string {
	supported := s.encoder.SupportedFormats()
	for _, want := range s.cfg.Formats {
		for _, have := range supported {
			if want == have {
				return want
			}
		}
	}
	return ""
}
