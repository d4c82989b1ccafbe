package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// parseFactuality extracts a structured judgment from the raw model text.
// Models that were asked for bare JSON still wrap it in prose or code
// fences often enough that we try three passes: direct JSON, the first
// embedded JSON object, then labeled-field scraping.
func parseFactuality(raw string) (FactualityResult, error) {
	text := strings.TrimSpace(raw)

	if result, ok := tryFactualityJSON(text); ok {
		return result, nil
	}
	if block := firstJSONObject(text); block != "" {
		if result, ok := tryFactualityJSON(block); ok {
			return result, nil
		}
	}
	if result, ok := scrapeFactuality(text); ok {
		return result, nil
	}
	return FactualityResult{}, fmt.Errorf("unrecognized factuality response shape")
}

func tryFactualityJSON(text string) (FactualityResult, bool) {
	var result FactualityResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return FactualityResult{}, false
	}
	if normalizeVerdict(&result.Verdict) != nil {
		return FactualityResult{}, false
	}
	clampFactuality(&result)
	return result, true
}

// firstJSONObject returns the first balanced {...} block in the text
func firstJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

var (
	scoreRe      = regexp.MustCompile(`(?i)factual[\s_]*(?:accuracy[\s_]*)?score[^0-9]*([0-9]{1,3})`)
	confidenceRe = regexp.MustCompile(`(?i)confidence[^0-9]*([0-9]{1,3})`)
	verdictRe    = regexp.MustCompile(`(?i)verdict[^a-z]*(likely[\s_]real|likely[\s_]fake|uncertain|real|fake|misleading)`)
)

// scrapeFactuality pulls labeled fields out of free-form analysis text,
// the way the original parsed "Factual Accuracy Score: 82%" headings
func scrapeFactuality(text string) (FactualityResult, bool) {
	verdictMatch := verdictRe.FindStringSubmatch(text)
	scoreMatch := scoreRe.FindStringSubmatch(text)
	if verdictMatch == nil || scoreMatch == nil {
		return FactualityResult{}, false
	}

	result := FactualityResult{
		Verdict:   verdictMatch[1],
		Rationale: truncateRunes(text, 500),
	}
	if err := normalizeVerdict(&result.Verdict); err != nil {
		return FactualityResult{}, false
	}
	result.FactualScore, _ = strconv.Atoi(scoreMatch[1])
	if confidenceMatch := confidenceRe.FindStringSubmatch(text); confidenceMatch != nil {
		result.Confidence, _ = strconv.Atoi(confidenceMatch[1])
	} else {
		result.Confidence = 50
	}
	clampFactuality(&result)
	return result, true
}

func normalizeVerdict(verdict *string) error {
	v := strings.ToLower(strings.TrimSpace(*verdict))
	v = strings.ReplaceAll(v, " ", "_")
	switch v {
	case VerdictLikelyReal, VerdictLikelyFake, VerdictUncertain:
		*verdict = v
	case "real", "real_news":
		*verdict = VerdictLikelyReal
	case "fake", "misleading", "fake_news":
		*verdict = VerdictLikelyFake
	default:
		return fmt.Errorf("unknown verdict %q", *verdict)
	}
	return nil
}

func clampFactuality(result *FactualityResult) {
	result.FactualScore = clampInt(result.FactualScore, 0, 100)
	result.Confidence = clampInt(result.Confidence, 0, 100)
	if result.Rationale == "" {
		result.Rationale = "no rationale provided"
	}
}

// parseSentiment extracts a sentiment classification from model text
func parseSentiment(raw string) (SentimentResult, error) {
	text := strings.TrimSpace(raw)
	if block := firstJSONObject(text); block != "" {
		text = block
	}

	var result SentimentResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return SentimentResult{}, fmt.Errorf("sentiment response is not JSON: %w", err)
	}

	switch strings.ToLower(result.Label) {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		result.Label = strings.ToLower(result.Label)
	default:
		return SentimentResult{}, fmt.Errorf("unknown sentiment label %q", result.Label)
	}
	if result.Score > 1 {
		result.Score = 1
	}
	if result.Score < -1 {
		result.Score = -1
	}
	return result, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
