// Package music builds mood-based playlists from the Spotify Web API.
package music

import "strings"

// Range is an inclusive [Min, Max] audio-feature interval.
type Range struct {
	Min float64
	Max float64
}

// Profile describes the music that suits a mood.
type Profile struct {
	Genres  []string
	Valence Range
	Energy  Range
	Tempo   Range
}

// DefaultMood is used for moods without a profile.
const DefaultMood = "calm"

var profiles = map[string]Profile{
	"happy": {
		Genres:  []string{"pop", "dance", "happy", "summer"},
		Valence: Range{0.7, 1.0}, Energy: Range{0.6, 1.0}, Tempo: Range{120, 160},
	},
	"sad": {
		Genres:  []string{"sad", "melancholy", "indie", "acoustic"},
		Valence: Range{0.0, 0.4}, Energy: Range{0.0, 0.5}, Tempo: Range{60, 100},
	},
	"anxious": {
		Genres:  []string{"ambient", "chill", "meditation", "nature"},
		Valence: Range{0.3, 0.7}, Energy: Range{0.0, 0.4}, Tempo: Range{60, 90},
	},
	"angry": {
		Genres:  []string{"rock", "metal", "punk", "electronic"},
		Valence: Range{0.0, 0.5}, Energy: Range{0.7, 1.0}, Tempo: Range{140, 200},
	},
	"calm": {
		Genres:  []string{"ambient", "chill", "jazz", "classical"},
		Valence: Range{0.4, 0.8}, Energy: Range{0.0, 0.3}, Tempo: Range{60, 100},
	},
	"energetic": {
		Genres:  []string{"dance", "electronic", "pop", "rock"},
		Valence: Range{0.6, 1.0}, Energy: Range{0.8, 1.0}, Tempo: Range{130, 180},
	},
	"romantic": {
		Genres:  []string{"r-n-b", "soul", "jazz", "acoustic"},
		Valence: Range{0.5, 0.9}, Energy: Range{0.2, 0.6}, Tempo: Range{70, 120},
	},
}

// ProfileFor returns the profile for mood, case-insensitively, falling
// back to DefaultMood.
func ProfileFor(mood string) Profile {
	if p, ok := profiles[strings.ToLower(mood)]; ok {
		return p
	}
	return profiles[DefaultMood]
}

// AdjustForIntensity narrows the profile ranges by intensity (1-10).
// Valence keeps its floor and shrinks from the top; energy and tempo keep
// their ceiling and rise from the bottom as intensity grows.
func AdjustForIntensity(p Profile, intensity int) Profile {
	f := float64(intensity) / 10.0
	out := p
	out.Valence = Range{p.Valence.Min, p.Valence.Min + (p.Valence.Max-p.Valence.Min)*f}
	out.Energy = Range{p.Energy.Min + (p.Energy.Max-p.Energy.Min)*(1-f), p.Energy.Max}
	out.Tempo = Range{p.Tempo.Min + (p.Tempo.Max-p.Tempo.Min)*(1-f), p.Tempo.Max}
	return out
}

// TargetsFor returns the lower bound of each adjusted range.
func TargetsFor(p Profile) *AudioTargets {
	return &AudioTargets{Valence: p.Valence.Min, Energy: p.Energy.Min, Tempo: p.Tempo.Min}
}

// DefaultSeedGenres are used when no available genre matches.
var DefaultSeedGenres = []string{"pop", "rock", "electronic", "jazz", "classical"}

// MaxSeeds is the most seeds the recommendations endpoint accepts.
const MaxSeeds = 5

// SeedGenres picks up to MaxSeeds available genres that contain, or are
// contained in, one of the targets. Targets are visited in order.
func SeedGenres(targets, available []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range targets {
		for _, a := range available {
			if seen[a] {
				continue
			}
			if strings.Contains(a, t) || strings.Contains(t, a) {
				seen[a] = true
				out = append(out, a)
				if len(out) == MaxSeeds {
					return out
				}
			}
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultSeedGenres...)
	}
	return out
}
