// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOCRModel is the vision model asked to transcribe images.
const DefaultOCRModel = "gpt-4o-mini"

// VisionConfig configures VisionOCR.
type VisionConfig struct {
	// BaseURL of an OpenAI-compatible API. Empty uses the SDK default.
	BaseURL string
	APIKey  string
	Model   string

	// MaxRetries for transient failures. Negative keeps the SDK default.
	MaxRetries int
}

// VisionOCR transcribes images with a vision-capable chat model.
type VisionOCR struct {
	client *openai.Client
	model  string
}

// NewVisionOCR creates the OCR client.
func NewVisionOCR(cfg VisionConfig) *VisionOCR {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOCRModel
	}

	client := openai.NewClient(opts...)
	return &VisionOCR{client: &client, model: model}
}

// Recognize sends the image as a data URL and returns the transcription.
func (v *VisionOCR) Recognize(ctx context.Context, image []byte, mediaType, language string, progress func(Progress)) (string, error) {
	report := func(status string, fraction float64) {
		if progress != nil {
			progress(Progress{Status: status, Fraction: fraction})
		}
	}

	report("encoding image", 0)
	dataURL := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(image)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(v.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(ocrPrompt(language)),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
	}

	report("recognizing text", 0.5)
	completion, err := v.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("ocr returned no choices")
	}

	report("done", 1)
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// ocrPrompt asks for a verbatim transcription in the given language.
func ocrPrompt(language string) string {
	return fmt.Sprintf("Transcribe all text visible in this image. The text is in %s. "+
		"Reply with the transcription only, without commentary.", languageName(language))
}

// languageName expands the three-letter codes accepted in the config.
func languageName(code string) string {
	switch strings.ToLower(code) {
	case "", "eng", "en":
		return "English"
	case "fra", "fr":
		return "French"
	case "deu", "de":
		return "German"
	case "spa", "es":
		return "Spanish"
	case "ita", "it":
		return "Italian"
	default:
		return code
	}
}
