package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// fencedJSON matches ```json ... ``` blocks in a free-text answer. The
// knowledge service narrates its reasoning before the structured answer,
// so the last block wins.
var fencedJSON = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// rawAnswer mirrors the JSON contract the prompts ask for. The rate field
// arrives as a string ("20%"), a bare number string ("20"), or a number,
// depending on how literally the model followed the format.
type rawAnswer struct {
	Applicable string          `json:"applicable"`
	Rate       json.RawMessage `json:"rate"`
	Reason     string          `json:"reason"`
}

// ParseRateAnswer extracts the structured rate answer from a free-text
// knowledge-service response. The answer must contain at least one fenced
// JSON block; a missing block, malformed JSON, or an unparseable rate is a
// contract violation surfaced as an error.
func ParseRateAnswer(content string) (RateAnswer, error) {
	matches := fencedJSON.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		// Some models skip the fence and answer with bare JSON.
		trimmed := strings.TrimSpace(cleanMarkdownWrapper(content))
		if strings.HasPrefix(trimmed, "{") {
			return parseAnswerJSON(trimmed)
		}
		return RateAnswer{}, fmt.Errorf("no JSON block found in response")
	}

	return parseAnswerJSON(matches[len(matches)-1][1])
}

func parseAnswerJSON(jsonStr string) (RateAnswer, error) {
	var raw rawAnswer
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return RateAnswer{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	applicable := strings.EqualFold(strings.TrimSpace(raw.Applicable), "y") ||
		strings.EqualFold(strings.TrimSpace(raw.Applicable), "yes")
	if !applicable {
		return RateAnswer{Applicable: false, Rate: 0, Reason: raw.Reason}, nil
	}

	rate, err := parseRateValue(raw.Rate)
	if err != nil {
		return RateAnswer{}, err
	}

	return RateAnswer{Applicable: true, Rate: rate, Reason: raw.Reason}, nil
}

// parseRateValue accepts 20, "20", and "20%" as the same rate.
func parseRateValue(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("no rate found in response")
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, fmt.Errorf("unparsable rate value %s", string(raw))
	}

	str = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(str), "%"))
	rate, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable rate value %q", str)
	}
	return rate, nil
}

// cleanMarkdownWrapper strips a markdown code fence wrapping an entire
// response, with or without a language tag.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx != -1 {
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}
