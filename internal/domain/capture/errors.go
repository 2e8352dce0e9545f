package capture

import "errors"

var (
	// ErrAlreadyRecording indicates a recording is already in progress.
	// The existing session is left untouched.
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	// ErrNotRecording indicates stop was called with no active recording.
	ErrNotRecording = errors.New("no recording in progress")

	// ErrPermissionDenied indicates the user declined microphone access.
	ErrPermissionDenied = errors.New("microphone access was denied: allow microphone use in your browser settings and try again")
	// ErrDeviceUnavailable indicates no usable microphone exists.
	ErrDeviceUnavailable = errors.New("no microphone was found: connect or enable one and try again")
	// ErrDeviceBusy indicates another consumer holds the microphone.
	ErrDeviceBusy = errors.New("the microphone is in use by another application: close it and try again")
	// ErrFormatUnsupported indicates no preferred encoding format is
	// supported by the platform encoder.
	ErrFormatUnsupported = errors.New("audio recording is not supported on this device: no usable encoding format")
)
