package analysis

import (
	"strings"
)

// Small keyword lexicon used when no model is configured or the model call
// failed. Crude, but it keeps sentiment deterministic in offline runs.
var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "positive": {}, "success": {},
	"successful": {}, "win": {}, "wins": {}, "growth": {}, "improve": {},
	"improved": {}, "breakthrough": {}, "progress": {}, "benefit": {},
	"strong": {}, "record": {}, "celebrate": {}, "achievement": {}, "hope": {},
	"recovery": {}, "gain": {}, "gains": {}, "boost": {}, "approval": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "negative": {}, "crisis": {},
	"fail": {}, "failed": {}, "failure": {}, "loss": {}, "losses": {},
	"death": {}, "deaths": {}, "disaster": {}, "scandal": {}, "fraud": {},
	"collapse": {}, "fear": {}, "threat": {}, "attack": {}, "decline": {},
	"warning": {}, "danger": {}, "crash": {}, "outbreak": {}, "violence": {},
}

// lexiconSentiment scores content by counting polarity keywords. Score is
// the signed fraction of polar words among all polar hits; a narrow band
// around zero maps to neutral.
func lexiconSentiment(content string) SentimentResult {
	words := strings.Fields(strings.ToLower(content))
	var positives, negatives int
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'()[]")
		if _, ok := positiveWords[word]; ok {
			positives++
		}
		if _, ok := negativeWords[word]; ok {
			negatives++
		}
	}

	total := positives + negatives
	if total == 0 {
		return SentimentResult{Label: SentimentNeutral, Score: 0}
	}

	score := float64(positives-negatives) / float64(total)
	label := SentimentNeutral
	if score > 0.2 {
		label = SentimentPositive
	} else if score < -0.2 {
		label = SentimentNegative
	}
	return SentimentResult{Label: label, Score: score}
}
