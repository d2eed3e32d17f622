package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// TransSeg is one timed span of a transcription.
type TransSeg struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the verbose_json body of an OpenAI-compatible
// transcription endpoint.
type Transcription struct {
	Text     string     `json:"text"`
	Language string     `json:"language"`
	Duration float64    `json:"duration"`
	Segments []TransSeg `json:"segments"`
}

// TranscribeRequest describes one call to a Whisper server.
type TranscribeRequest struct {
	BaseURL  string
	Endpoint string
	Model    string
	Language string
	APIKey   string
	WavPath  string
}

// Transcribe uploads a WAV file and returns its transcription.
func (h *HTTP) Transcribe(ctx context.Context, r TranscribeRequest) (*Transcription, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(r.WavPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(r.WavPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"model":           r.Model,
		"language":        r.Language,
		"response_format": "verbose_json",
		"temperature":     "0",
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	endpoint := r.Endpoint
	if endpoint == "" {
		endpoint = "/v1/audio/transcriptions"
	}
	req, err := http.NewRequest(http.MethodPost, joinURL(r.BaseURL, endpoint), &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if r.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}

	resp, err := h.do(ctx, "whisper", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out Transcription
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("whisper decode: %w", err)
	}
	return &out, nil
}
