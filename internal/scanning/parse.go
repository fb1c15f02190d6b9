package scanning

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/zombor/bill-extractor/internal/extraction"
)

// boxScale is the range vision models report normalized coordinates in.
const boxScale = 1000

// wordBoxPrompt is the shared prompt used by all LLM recognizers
const wordBoxPrompt = `You are an OCR engine reading a scanned bill or invoice page. Transcribe every word printed on the page exactly as written, including numbers, currency symbols and punctuation. Do not correct spelling and do not merge or split words.

For each word return its bounding box as [ymin, xmin, ymax, xmax], with coordinates normalized to 0-1000 relative to the image height and width.

Return ONLY valid JSON in this exact format:
{
  "words": [
    {"text": "Total", "box_2d": [812, 64, 836, 140]}
  ]
}

Important:
- List words top to bottom, left to right
- Include every word, even if it looks like noise
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

type wordBox struct {
	Text string    `json:"text"`
	Box  []float64 `json:"box_2d"`
}

type wordBoxResponse struct {
	Words []wordBox `json:"words"`
}

// parseWordBoxJSON converts a model's word list into page tokens, scaling
// normalized boxes to a width x height pixel page. Words without a usable box
// are skipped.
func parseWordBoxJSON(text string, width, height int) ([]extraction.Token, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	var resp wordBoxResponse
	if err := json.Unmarshal([]byte(text[startIdx:endIdx+1]), &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	tokens := make([]extraction.Token, 0, len(resp.Words))
	for _, w := range resp.Words {
		if len(w.Box) != 4 {
			continue
		}
		top := scaleCoord(w.Box[0], height)
		left := scaleCoord(w.Box[1], width)
		bottom := scaleCoord(w.Box[2], height)
		right := scaleCoord(w.Box[3], width)
		tokens = append(tokens, extraction.Token{
			Text: w.Text,
			BBox: extraction.BBox{
				Left:   min(left, right),
				Top:    min(top, bottom),
				Width:  abs(right - left),
				Height: abs(bottom - top),
			},
			Confidence: extraction.UnknownConfidence,
		})
	}
	return extraction.CleanTokens(tokens), nil
}

func scaleCoord(v float64, size int) int {
	v = math.Max(0, math.Min(boxScale, v))
	return int(math.Round(v * float64(size) / boxScale))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
