package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/hargunmujral/3brown1blue/application/ports/outbound"
	"github.com/hargunmujral/3brown1blue/config"
)

type ElevenLabsRequest struct {
	Text          string        `json:"text"`
	ModelId       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechSynthesizer struct {
	ContentFetcher
	logger           outbound.LoggerPort
	elevenLabsConfig *config.ElevenLabsConfig
}

func NewSpeechSynthesizer(contentFetcher ContentFetcher, elevenLabsConfig *config.ElevenLabsConfig,
	logger outbound.LoggerPort) outbound.SpeechSynthesizerPort {
	return &speechSynthesizer{
		ContentFetcher:   contentFetcher,
		logger:           logger,
		elevenLabsConfig: elevenLabsConfig,
	}
}

func (s *speechSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	req, err := s.getRequest(ctx, text)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to construct the HTTP request for audio fetching", map[string]interface{}{
			"text": text,
		})
		return nil, err
	}

	return s.FetchContent(req)
}

func (s *speechSynthesizer) getRequest(ctx context.Context, text string) (*http.Request, error) {
	reqBody := ElevenLabsRequest{
		Text:    text,
		ModelId: s.elevenLabsConfig.ModelId,
		VoiceSettings: VoiceSettings{
			Stability:       s.elevenLabsConfig.Stability,
			SimilarityBoost: s.elevenLabsConfig.SimilarityBoost,
		},
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		s.logger.Error(err, "Failed to marshal the request body for the speech API")
		return nil, err
	}

	url := s.elevenLabsConfig.ApiUrl + "/" + s.elevenLabsConfig.VoiceId +
		"?output_format=" + s.elevenLabsConfig.OutputFormat
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to create the HTTP POST request", map[string]interface{}{
			"URL": url,
		})
		return nil, err
	}

	reqHeaders := map[string]string{
		"Accept":       "audio/wav",
		"xi-api-key":   s.elevenLabsConfig.ApiKey,
		"Content-Type": "application/json",
	}
	for key, value := range reqHeaders {
		req.Header.Add(key, value)
	}

	return req, nil
}
