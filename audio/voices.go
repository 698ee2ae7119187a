package audio

import (
	"sort"

	"github.com/fernweh-games/whisperwood/audio/speech"
)

// VoiceProfile shapes how an archetype speaks. Profiles are abstract; the
// concrete backend voice is resolved at speak time from whatever voices the
// active backend offers, so a profile survives a backend fallback.
type VoiceProfile struct {
	Archetype string
	Pitch     float64 // Multiplier around the voice's natural pitch
	Rate      float64 // Speech rate multiplier
	Volume    float64 // Base volume before master and spatial scaling
}

// Archetype names. Narrator is the universal fallback.
const (
	VoiceNarrator  = "narrator"
	VoiceGuide     = "guide"
	VoiceCharacter = "character"
	VoiceMystical  = "mystical"
	VoiceNature    = "nature"
)

var voiceProfiles = map[string]VoiceProfile{
	VoiceNarrator:  {Archetype: VoiceNarrator, Pitch: 1.0, Rate: 1.0, Volume: 1.0},
	VoiceGuide:     {Archetype: VoiceGuide, Pitch: 1.15, Rate: 1.05, Volume: 0.9},
	VoiceCharacter: {Archetype: VoiceCharacter, Pitch: 0.9, Rate: 1.0, Volume: 1.0},
	VoiceMystical:  {Archetype: VoiceMystical, Pitch: 1.3, Rate: 0.85, Volume: 0.85},
	VoiceNature:    {Archetype: VoiceNature, Pitch: 0.8, Rate: 0.9, Volume: 0.9},
}

// CharacterVoice returns the profile for an archetype. Unknown archetypes
// fall back to the narrator so new game content cannot silence itself.
func CharacterVoice(archetype string) VoiceProfile {
	if p, ok := voiceProfiles[archetype]; ok {
		return p
	}
	return voiceProfiles[VoiceNarrator]
}

// VoiceArchetypes lists the known archetypes, sorted.
func VoiceArchetypes() []string {
	names := make([]string, 0, len(voiceProfiles))
	for name := range voiceProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveVoice picks a concrete backend voice id for an archetype. It tries
// voices that declare the archetype's category, then voices serving the
// narrator category, then whatever the backend has. Empty means the backend
// advertises no voices at all; backends treat an empty voice id as "use
// your default".
func resolveVoice(voices []speech.Voice, archetype string) string {
	for _, v := range voices {
		if v.Serves(archetype) {
			return v.ID
		}
	}
	for _, v := range voices {
		if v.Serves(VoiceNarrator) {
			return v.ID
		}
	}
	if len(voices) > 0 {
		return voices[0].ID
	}
	return ""
}
