//go:build nocgo
// +build nocgo

package playback

import "errors"

// Builds without cgo have no audio device; the factory falls back to the
// mock context, which keeps the engine silent but functional.
func newProductionContext(int) (Context, error) {
	return nil, errors.New("audio output not available in nocgo builds")
}
