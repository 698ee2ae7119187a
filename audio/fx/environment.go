// Package fx shapes sound for the level the player is in: a per-level
// acoustic profile, a shared convolution reverb, and a fixed dynamics
// compressor on the output.
package fx

import "github.com/charmbracelet/log"

// RoomSize describes the perceived size of a level's acoustic space.
type RoomSize string

const (
	RoomSmall  RoomSize = "small"
	RoomMedium RoomSize = "medium"
	RoomLarge  RoomSize = "large"
)

// Material describes the dominant reflecting surface of a level.
type Material string

const (
	MaterialSoft  Material = "soft"
	MaterialHard  Material = "hard"
	MaterialMixed Material = "mixed"
)

// Environment holds the acoustic parameters for one level. It is a pure
// function of the level name; nothing is persisted.
type Environment struct {
	ReverbLevel float64  // Wet/dry mix, 0 disables the wet path
	Dampening   float64  // High-frequency absorption, 0..1
	RoomSize    RoomSize // Perceived space size
	Material    Material // Dominant surface character
}

// DefaultEnvironment is used for any level name outside the known set:
// moderate reverb, mixed material, medium room. Unknown names are never an
// error.
var DefaultEnvironment = Environment{
	ReverbLevel: 0.3,
	Dampening:   0.5,
	RoomSize:    RoomMedium,
	Material:    MaterialMixed,
}

var environments = map[string]Environment{
	"Ocean Shore": {
		ReverbLevel: 0.5,
		Dampening:   0.3,
		RoomSize:    RoomLarge,
		Material:    MaterialHard,
	},
	"Whispering Forest": {
		ReverbLevel: 0.4,
		Dampening:   0.6,
		RoomSize:    RoomLarge,
		Material:    MaterialSoft,
	},
	"Crystal Caverns": {
		ReverbLevel: 0.7,
		Dampening:   0.2,
		RoomSize:    RoomLarge,
		Material:    MaterialHard,
	},
	"Meadow Path": {
		ReverbLevel: 0.15,
		Dampening:   0.7,
		RoomSize:    RoomSmall,
		Material:    MaterialSoft,
	},
	"Old Keep": {
		ReverbLevel: 0.6,
		Dampening:   0.4,
		RoomSize:    RoomMedium,
		Material:    MaterialHard,
	},
}

// EnvironmentForLevel returns the acoustic profile for a level name. Names
// outside the known set get DefaultEnvironment.
func EnvironmentForLevel(name string) Environment {
	if env, ok := environments[name]; ok {
		return env
	}
	log.Debug("unknown level, using default environment", "level", name)
	return DefaultEnvironment
}
