package music

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/benvon/mindful-harmony/internal/models"
	"golang.org/x/oauth2/clientcredentials"
)

// AudioTargets are target audio-feature values for recommendations.
type AudioTargets struct {
	Valence float64
	Energy  float64
	Tempo   float64
}

// RecommendationParams are the query parameters for a recommendation call.
// Targets is omitted when nil.
type RecommendationParams struct {
	SeedGenres []string
	SeedTracks []string
	Targets    *AudioTargets
	Limit      int
}

// SpotifyAPI is the subset of the Spotify Web API the service uses.
type SpotifyAPI interface {
	Recommendations(ctx context.Context, p RecommendationParams) ([]models.Track, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)
	AvailableGenres(ctx context.Context) ([]string, error)
}

// SpotifyClient calls the Spotify Web API with an app-only token obtained
// through the client credentials flow.
type SpotifyClient struct {
	baseURL string
	http    *http.Client
}

// NewSpotifyClient creates a client. Tokens are fetched and refreshed
// lazily by the oauth2 transport.
func NewSpotifyClient(ctx context.Context, clientID, clientSecret, tokenURL, apiURL string) *SpotifyClient {
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := cc.Client(ctx)
	httpClient.Timeout = 10 * time.Second
	return &SpotifyClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		http:    httpClient,
	}
}

type spotifyTrack struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	DurationMS int     `json:"duration_ms"`
	Popularity int     `json:"popularity"`
	PreviewURL *string `json:"preview_url"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

func (t spotifyTrack) toModel() models.Track {
	track := models.Track{
		ID:         t.ID,
		Name:       t.Name,
		Album:      t.Album.Name,
		DurationMS: t.DurationMS,
		Popularity: t.Popularity,
		PreviewURL: t.PreviewURL,
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	if t.ExternalURLs.Spotify != "" {
		u := t.ExternalURLs.Spotify
		track.ExternalURL = &u
	}
	if len(t.Album.Images) > 0 {
		u := t.Album.Images[0].URL
		track.AlbumArt = &u
	}
	return track
}

func toModels(in []spotifyTrack) []models.Track {
	out := make([]models.Track, 0, len(in))
	for _, t := range in {
		out = append(out, t.toModel())
	}
	return out
}

// Recommendations calls GET /recommendations.
func (c *SpotifyClient) Recommendations(ctx context.Context, p RecommendationParams) ([]models.Track, error) {
	q := url.Values{}
	if len(p.SeedGenres) > 0 {
		q.Set("seed_genres", strings.Join(capSeeds(p.SeedGenres), ","))
	}
	if len(p.SeedTracks) > 0 {
		q.Set("seed_tracks", strings.Join(capSeeds(p.SeedTracks), ","))
	}
	if t := p.Targets; t != nil {
		q.Set("target_valence", formatFloat(t.Valence))
		q.Set("target_energy", formatFloat(t.Energy))
		q.Set("target_tempo", formatFloat(t.Tempo))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}

	var body struct {
		Tracks []spotifyTrack `json:"tracks"`
	}
	if err := c.get(ctx, "/recommendations", q, &body); err != nil {
		return nil, err
	}
	return toModels(body.Tracks), nil
}

// SearchTracks calls GET /search with type=track.
func (c *SpotifyClient) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))

	var body struct {
		Tracks struct {
			Items []spotifyTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := c.get(ctx, "/search", q, &body); err != nil {
		return nil, err
	}
	return toModels(body.Tracks.Items), nil
}

// AvailableGenres calls GET /recommendations/available-genre-seeds.
func (c *SpotifyClient) AvailableGenres(ctx context.Context) ([]string, error) {
	var body struct {
		Genres []string `json:"genres"`
	}
	if err := c.get(ctx, "/recommendations/available-genre-seeds", nil, &body); err != nil {
		return nil, err
	}
	return body.Genres, nil
}

func (c *SpotifyClient) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("spotify request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("spotify %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode spotify response: %w", err)
	}
	return nil
}

func capSeeds(s []string) []string {
	if len(s) > MaxSeeds {
		return s[:MaxSeeds]
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
