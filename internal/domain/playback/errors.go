package playback

import "errors"

// ErrPlaybackFailed indicates the audio output could not start the clip.
var ErrPlaybackFailed = errors.New("playback failed")
