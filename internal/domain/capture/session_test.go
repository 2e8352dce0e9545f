package capture_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ganot/recital/internal/domain/capture"
	"github.com/ganot/recital/internal/domain/clip"
	"github.com/ganot/recital/internal/hostbridge"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	mu     sync.Mutex
	closed int
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *fakeStream) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeDevice struct {
	err      error
	acquires int
	stream   *fakeStream
}

func (d *fakeDevice) AcquireInputStream(ctx context.Context) (capture.InputStream, error) {
	d.acquires++
	if d.err != nil {
		return nil, d.err
	}
	d.stream = &fakeStream{}
	return d.stream, nil
}

type fakeEncoded struct {
	ch          chan []byte
	closeOnce   sync.Once
	finalizeErr error
}

func (e *fakeEncoded) Chunks() <-chan []byte { return e.ch }

func (e *fakeEncoded) Finalize(ctx context.Context) error {
	e.closeOnce.Do(func() { close(e.ch) })
	return e.finalizeErr
}

type fakeEncoder struct {
	formats   []string
	encodeErr error
	last      *fakeEncoded
}

func (e *fakeEncoder) SupportedFormats() []string { return e.formats }

func (e *fakeEncoder) Encode(ctx context.Context, stream capture.InputStream, format string, bitrateHint int) (capture.EncodedStream, error) {
	if e.encodeErr != nil {
		return nil, e.encodeErr
	}
	e.last = &fakeEncoded{ch: make(chan []byte, 16)}
	return e.last, nil
}

type fakeHost struct {
	mu            sync.Mutex
	timerRunning  bool
	speechActive  bool
	timerPauses   int
	timerResumes  int
	speechPauses  int
	speechResumes int
}

func (h *fakeHost) TimerRunning() bool { h.mu.Lock(); defer h.mu.Unlock(); return h.timerRunning }
func (h *fakeHost) PauseTimer()        { h.mu.Lock(); defer h.mu.Unlock(); h.timerPauses++ }
func (h *fakeHost) ResumeTimer()       { h.mu.Lock(); defer h.mu.Unlock(); h.timerResumes++ }
func (h *fakeHost) SpeechActive() bool { h.mu.Lock(); defer h.mu.Unlock(); return h.speechActive }
func (h *fakeHost) PauseSpeech()       { h.mu.Lock(); defer h.mu.Unlock(); h.speechPauses++ }
func (h *fakeHost) ResumeSpeech()      { h.mu.Lock(); defer h.mu.Unlock(); h.speechResumes++ }

func testConfig() capture.Config {
	cfg := capture.DefaultConfig()
	cfg.MaxDuration = time.Minute
	return cfg
}

func newTestSession(device *fakeDevice, encoder *fakeEncoder) *capture.Session {
	return capture.NewSession(device, encoder, nil, nil, testConfig(), nil)
}

func TestSession_StartStopRoundTrip(t *testing.T) {
	ctx := context.Background()
	device := &fakeDevice{}
	encoder := &fakeEncoder{formats: []string{"audio/mp4", "audio/webm;codecs=opus"}}
	sess := newTestSession(device, encoder)

	require.NoError(t, sess.Start(ctx))
	require.True(t, sess.Recording())

	encoder.last.ch <- []byte("abc")
	encoder.last.ch <- []byte{} // empty intermediate chunks are tolerated
	encoder.last.ch <- []byte("def")

	res, err := sess.Stop(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("abcdef"), res.Payload.Bytes)
	require.Equal(t, "audio/webm;codecs=opus", res.Payload.Format, "highest-preference supported format wins")
	require.GreaterOrEqual(t, res.Duration, time.Duration(0))
	require.False(t, sess.Recording())
	require.Equal(t, 1, device.stream.closeCount())
}

func TestSession_StartWhileRecording(t *testing.T) {
	ctx := context.Background()
	device := &fakeDevice{}
	encoder := &fakeEncoder{formats: []string{"audio/webm;codecs=opus"}}
	sess := newTestSession(device, encoder)

	require.NoError(t, sess.Start(ctx))
	err := sess.Start(ctx)
	require.ErrorIs(t, err, capture.ErrAlreadyRecording)
	require.Equal(t, 1, device.acquires, "existing session must be untouched")
	require.True(t, sess.Recording())

	_, err = sess.Stop(ctx)
	require.NoError(t, err)
}

func TestSession_StopWhileIdle(t *testing.T) {
	sess := newTestSession(&fakeDevice{}, &fakeEncoder{formats: []string{"audio/webm"}})
	_, err := sess.Stop(context.Background())
	require.ErrorIs(t, err, capture.ErrNotRecording)
}

func TestSession_DeviceFailuresSurfacedVerbatim(t *testing.T) {
	for _, devErr := range []error{
		capture.ErrPermissionDenied,
		capture.ErrDeviceUnavailable,
		capture.ErrDeviceBusy,
	} {
		sess := newTestSession(&fakeDevice{err: devErr}, &fakeEncoder{formats: []string{"audio/webm"}})
		err := sess.Start(context.Background())
		require.ErrorIs(t, err, devErr)
		require.False(t, sess.Recording())
	}
}

func TestSession_FormatUnsupportedReleasesStream(t *testing.T) {
	device := &fakeDevice{}
	encoder := &fakeEncoder{formats: []string{"audio/x-exotic"}}
	sess := newTestSession(device, encoder)

	err := sess.Start(context.Background())
	require.ErrorIs(t, err, capture.ErrFormatUnsupported)
	require.Equal(t, 1, device.stream.closeCount())
	require.False(t, sess.Recording())
}

func TestSession_EncoderFailureReleasesStream(t *testing.T) {
	device := &fakeDevice{}
	encoder := &fakeEncoder{
		formats:   []string{"audio/webm;codecs=opus"},
		encodeErr: errors.New("encoder wedged"),
	}
	sess := newTestSession(device, encoder)

	err := sess.Start(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, device.stream.closeCount())
	require.False(t, sess.Recording())
}

func TestSession_DeadlineForcesStopOnce(t *testing.T) {
	ctx := context.Background()
	device := &fakeDevice{}
	encoder := &fakeEncoder{formats: []string{"audio/webm;codecs=opus"}}
	cfg := testConfig()
	cfg.MaxDuration = 30 * time.Millisecond
	sess := capture.NewSession(device, encoder, nil, nil, cfg, nil)

	require.NoError(t, sess.Start(ctx))
	encoder.last.ch <- []byte("forced")

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, 1, device.stream.closeCount(), "deadline releases the stream exactly once")
	require.True(t, sess.Recording(), "finished payload awaits collection")

	res, err := sess.Stop(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("forced"), res.Payload.Bytes)
	require.Equal(t, 1, device.stream.closeCount(), "stop after deadline must not release twice")
	require.False(t, sess.Recording())
}

func TestSession_OversizedPayloadReleasedAndRejected(t *testing.T) {
	ctx := context.Background()
	device := &fakeDevice{}
	encoder := &fakeEncoder{formats: []string{"audio/webm;codecs=opus"}}
	cfg := testConfig()
	cfg.MaxPayloadBytes = 4
	sess := capture.NewSession(device, encoder, nil, nil, cfg, nil)

	require.NoError(t, sess.Start(ctx))
	encoder.last.ch <- []byte("way over the limit")

	_, err := sess.Stop(ctx)
	require.ErrorIs(t, err, clip.ErrPayloadTooLarge)
	require.Equal(t, 1, device.stream.closeCount())
	require.False(t, sess.Recording())
}

func TestSession_BridgePausedAndSelectivelyResumed(t *testing.T) {
	ctx := context.Background()
	host := &fakeHost{timerRunning: true, speechActive: false}
	bridge := hostbridge.NewCoordinator(host)
	device := &fakeDevice{}
	encoder := &fakeEncoder{formats: []string{"audio/webm;codecs=opus"}}
	sess := capture.NewSession(device, encoder, nil, bridge, testConfig(), nil)

	require.NoError(t, sess.Start(ctx))
	require.Equal(t, 1, host.timerPauses)
	require.Zero(t, host.speechPauses, "idle speech must not be paused")

	_, err := sess.Stop(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, host.timerResumes)
	require.Zero(t, host.speechResumes, "speech was never active, must not be resumed")
}

type fakeMeterProvider struct {
	err   error
	meter *fakeMeter
}

type fakeMeter struct {
	mu     sync.Mutex
	closed int
}

func (m *fakeMeter) Level() float64 { return 0.5 }

func (m *fakeMeter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

func (p *fakeMeterProvider) Meter(stream capture.InputStream) (capture.Meter, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.meter = &fakeMeter{}
	return p.meter, nil
}

func TestSession_MeterFailureDoesNotAbortCapture(t *testing.T) {
	ctx := context.Background()
	meters := &fakeMeterProvider{err: errors.New("no analyser")}
	device := &fakeDevice{}
	encoder := &fakeEncoder{formats: []string{"audio/webm;codecs=opus"}}
	sess := capture.NewSession(device, encoder, meters, nil, testConfig(), nil)

	require.NoError(t, sess.Start(ctx))
	require.Zero(t, sess.Level())

	_, err := sess.Stop(ctx)
	require.NoError(t, err)
}

func TestSession_MeterClosedOnStop(t *testing.T) {
	ctx := context.Background()
	meters := &fakeMeterProvider{}
	device := &fakeDevice{}
	encoder := &fakeEncoder{formats: []string{"audio/webm;codecs=opus"}}
	sess := capture.NewSession(device, encoder, meters, nil, testConfig(), nil)

	require.NoError(t, sess.Start(ctx))
	require.Equal(t, 0.5, sess.Level())

	_, err := sess.Stop(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, meters.meter.closed)
}
