package music

import (
	"fmt"
	"strings"

	"github.com/benvon/mindful-harmony/internal/models"
)

const (
	fallbackAlbum      = "Fallback Playlist"
	fallbackDurationMS = 180000
	fallbackPopularity = 50
	fallbackIntensity  = 5
)

type fallbackTrack struct{ name, artist string }

var fallbackTracks = map[string][]fallbackTrack{
	"happy": {
		{"Happy", "Pharrell Williams"},
		{"Good Life", "OneRepublic"},
		{"Walking on Sunshine", "Katrina & The Waves"},
	},
	"sad": {
		{"Mad World", "Gary Jules"},
		{"Hallelujah", "Jeff Buckley"},
		{"The Scientist", "Coldplay"},
	},
	"calm": {
		{"Claire de Lune", "Debussy"},
		{"Weightless", "Marconi Union"},
		{"River Flows in You", "Yiruma"},
	},
	"energetic": {
		{"Eye of the Tiger", "Survivor"},
		{"We Will Rock You", "Queen"},
		{"Don't Stop Believin'", "Journey"},
	},
}

// FallbackPlaylist returns a fixed playlist for mood, used when Spotify is
// unavailable. Unknown moods get the calm list.
func FallbackPlaylist(mood string, limit int) models.Playlist {
	list, ok := fallbackTracks[strings.ToLower(mood)]
	if !ok {
		list = fallbackTracks[DefaultMood]
	}
	if limit >= 0 && limit < len(list) {
		list = list[:limit]
	}

	tracks := make([]models.Track, 0, len(list))
	for i, t := range list {
		tracks = append(tracks, models.Track{
			ID:         fmt.Sprintf("fallback_%d", i),
			Name:       t.name,
			Artist:     t.artist,
			Album:      fallbackAlbum,
			DurationMS: fallbackDurationMS,
			Popularity: fallbackPopularity,
		})
	}
	return models.Playlist{
		Mood:        mood,
		Intensity:   fallbackIntensity,
		Tracks:      tracks,
		TotalTracks: len(tracks),
		Fallback:    true,
	}
}
