// Package speech transcribes short voice recordings with Google Cloud Speech.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	speechapi "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ErrUnavailable is returned when no transcription backend is configured.
var ErrUnavailable = errors.New("speech transcription not configured")

// Result is a transcription.
type Result struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*Result, error)
}

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// GCPTranscriber uses the synchronous Recognize call, which accepts up to
// one minute of audio.
type GCPTranscriber struct {
	recognize recognizeFunc
	closer    func() error
	language  string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewGCPTranscriber creates a client. credentialsFile may be empty to use
// application default credentials.
func NewGCPTranscriber(ctx context.Context, credentialsFile, language string, logger *zap.Logger) (*GCPTranscriber, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := speechapi.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	t := newTranscriber(func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return client.Recognize(ctx, req)
	}, language, logger)
	t.closer = client.Close
	return t, nil
}

func newTranscriber(fn recognizeFunc, language string, logger *zap.Logger) *GCPTranscriber {
	if language == "" {
		language = "en-US"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GCPTranscriber{
		recognize: fn,
		closer:    func() error { return nil },
		language:  language,
		timeout:   30 * time.Second,
		logger:    logger,
	}
}

// Close releases the underlying connection.
func (t *GCPTranscriber) Close() error {
	return t.closer()
}

// Transcribe sends audio to Recognize and joins the top alternative of
// every result. Confidence is the mean of those alternatives.
func (t *GCPTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (*Result, error) {
	if len(audio) == 0 {
		return &Result{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   EncodingFor(mimeType),
			LanguageCode:               t.language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}

	start := time.Now()
	resp, err := t.recognize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("speech recognize: %w", err)
	}
	res := parseResponse(resp)
	t.logger.Debug("speech_transcribed",
		zap.Int("audio_bytes", len(audio)),
		zap.Int("transcript_length", len(res.Transcript)),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

// EncodingFor maps an upload content type to a Recognize encoding.
// Unknown types are left unspecified so the service can sniff WAV and
// FLAC headers.
func EncodingFor(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.Contains(m, "webm"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	case strings.Contains(m, "ogg"), strings.Contains(m, "opus"):
		return speechpb.RecognitionConfig_OGG_OPUS
	case strings.Contains(m, "wav"), strings.Contains(m, "l16"):
		return speechpb.RecognitionConfig_LINEAR16
	case strings.Contains(m, "flac"):
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(m, "mp3"), strings.Contains(m, "mpeg"):
		return speechpb.RecognitionConfig_MP3
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func parseResponse(resp *speechpb.RecognizeResponse) *Result {
	out := &Result{}
	if resp == nil {
		return out
	}
	var (
		parts []string
		sum   float64
	)
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		text := strings.TrimSpace(alts[0].GetTranscript())
		if text == "" {
			continue
		}
		parts = append(parts, text)
		sum += float64(alts[0].GetConfidence())
	}
	if len(parts) > 0 {
		out.Transcript = strings.Join(parts, " ")
		out.Confidence = sum / float64(len(parts))
	}
	return out
}
