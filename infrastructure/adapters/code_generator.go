package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/donovanhide/eventsource"

	"github.com/hargunmujral/3brown1blue/application/ports/outbound"
	"github.com/hargunmujral/3brown1blue/config"
	"github.com/hargunmujral/3brown1blue/domain"
)

const DoneSignal = "[DONE]"
const MaxStreamRetries = 3

type chatGptRequest struct {
	Stream   bool                 `json:"stream"`
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
}

type chatGptChunkBody struct {
	Choices []chatGptResponseChoice `json:"choices"`
}

type chatGptResponseChoice struct {
	Index int `json:"index"`
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
}

type chatCodeGenerator struct {
	logger    outbound.LoggerPort
	gptConfig *config.GptConfig
}

// NewChatCodeGenerator talks to a chat-completions endpoint over a streamed
// connection and accumulates the deltas into the full assistant message.
func NewChatCodeGenerator(logger outbound.LoggerPort, gptConfig *config.GptConfig) outbound.CodeGeneratorPort {
	return &chatCodeGenerator{
		logger:    logger,
		gptConfig: gptConfig,
	}
}

func (g *chatCodeGenerator) Generate(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	req, err := g.createRequest(ctx, messages)
	if err != nil {
		g.logger.Error(err, "Failed to create HTTP request for code stream")
		return "", err
	}

	stream, err := eventsource.SubscribeWithRequest("", req)
	if err != nil {
		g.logger.Error(err, "Failed to subscribe to code stream")
		return "", err
	}

	var output strings.Builder
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case ev := <-stream.Events:
			if ev.Data() == DoneSignal {
				return output.String(), nil
			}
			payload, err := g.extractPayload(ev)
			if err != nil {
				return "", err
			}
			output.WriteString(payload)
			retryCount = 0
		case err := <-stream.Errors:
			if err == io.EOF {
				return output.String(), nil
			}
			if retryCount < MaxStreamRetries {
				g.logger.ErrorWithFields(err, "Error occurred during streaming, retrying", map[string]interface{}{
					"retry_count": retryCount})
				retryCount++
				continue
			}
			g.logger.Error(err, "Error occurred during streaming, max retries reached")
			return "", err
		}
	}
}

func (g *chatCodeGenerator) extractPayload(event eventsource.Event) (string, error) {
	var chunkBody chatGptChunkBody
	if err := json.Unmarshal([]byte(event.Data()), &chunkBody); err != nil {
		g.logger.Error(err, "Failed to unmarshal event data")
		return "", err
	}
	if len(chunkBody.Choices) == 0 {
		return "", nil
	}
	return chunkBody.Choices[0].Delta.Content, nil
}

func (g *chatCodeGenerator) createRequest(ctx context.Context, messages []domain.ChatMessage) (*http.Request, error) {
	promptReq := chatGptRequest{
		Stream:   true,
		Model:    g.gptConfig.Model,
		Messages: messages,
	}

	payloadBytes, err := json.Marshal(promptReq)
	if err != nil {
		g.logger.Error(err, "Failed to marshal the request body")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.gptConfig.ApiUrl, bytes.NewBuffer(payloadBytes))
	if err != nil {
		g.logger.Error(err, "Failed to create the HTTP request")
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+g.gptConfig.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}
