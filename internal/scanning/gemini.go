package scanning

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png" // Register PNG decoder
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/zombor/bill-extractor/internal/extraction"
)

// Gemini implements the Recognizer interface using Google Gemini
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Recognizer instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

// Recognize asks Gemini for the words on a page and their boxes
func (g *Gemini) Recognize(ctx context.Context, page []byte) ([]extraction.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	cfg, _, err := image.DecodeConfig(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("reading page dimensions: %w", err)
	}

	// genai.ImageData expects just the format suffix, and pages are always PNG
	parts := []genai.Part{
		genai.ImageData("png", page),
		genai.Text(wordBoxPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	tokens, err := parseWordBoxJSON(responseText.String(), cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("parsing word boxes: %w", err)
	}
	return tokens, nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
