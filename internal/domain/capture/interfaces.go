package capture

import "context"

// DeviceAudio grants access to the platform microphone. Implementations
// return ErrPermissionDenied, ErrDeviceUnavailable or ErrDeviceBusy so the
// session can surface an actionable message.
type DeviceAudio interface {
	AcquireInputStream(ctx context.Context) (InputStream, error)
}

// InputStream is an exclusive live microphone stream. Close releases the
// device for other consumers.
type InputStream interface {
	Close() error
}

// Encoder wraps the platform's audio encoding primitive.
type Encoder interface {
	// SupportedFormats reports usable container/codec tags, unordered.
	SupportedFormats() []string
	// Encode begins encoding the stream into the given format. Chunks are
	// delivered asynchronously on the returned stream until Finalize.
	Encode(ctx context.Context, stream InputStream, format string, bitrateHint int) (EncodedStream, error)
}

// EncodedStream delivers encoded audio chunks as they are produced.
type EncodedStream interface {
	// Chunks yields encoded data. The channel is closed once Finalize has
	// flushed the encoder. Zero-length chunks may be delivered.
	Chunks() <-chan []byte
	// Finalize flushes any buffered audio and closes the chunk channel.
	Finalize(ctx context.Context) error
}

// MeterProvider derives live input levels from a stream. Metering is a
// best-effort side channel; a provider that fails never aborts capture.
type MeterProvider interface {
	Meter(stream InputStream) (Meter, error)
}

// Meter reports the current input level in [0, 1].
type Meter interface {
	Level() float64
	Close() error
}
