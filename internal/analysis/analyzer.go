package analysis

import (
	"context"
	"fmt"
	"log"
	"strings"

	"truthscan/internal/evidence"
)

// Verdict labels for the factuality judgment
const (
	VerdictLikelyReal = "likely_real"
	VerdictLikelyFake = "likely_fake"
	VerdictUncertain  = "uncertain"
)

// Sentiment labels
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// SentimentResult is the tone classification of the article body
type SentimentResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"` // [-1,1]
}

// FactualityResult is the evidence-grounded judgment of the article
type FactualityResult struct {
	Verdict      string `json:"verdict"`
	FactualScore int    `json:"factual_score"` // [0,100]
	Confidence   int    `json:"confidence"`    // [0,100]
	Rationale    string `json:"rationale"`
}

// DefaultFactuality is the degraded value substituted when the model call
// or its response parsing fails
func DefaultFactuality() FactualityResult {
	return FactualityResult{
		Verdict:      VerdictUncertain,
		FactualScore: 50,
		Confidence:   0,
		Rationale:    "analysis unavailable",
	}
}

// Analyzer runs sentiment and factuality analysis. A nil model client is
// legal: sentiment falls back to the lexicon scorer and factuality returns
// its degraded default.
type Analyzer struct {
	client *Client
}

// NewAnalyzer creates an analyzer backed by the given model client
func NewAnalyzer(client *Client) *Analyzer {
	return &Analyzer{client: client}
}

const sentimentSystemPrompt = "You classify the emotional tone of news text. " +
	"Respond with a single JSON object: {\"label\": \"positive\"|\"negative\"|\"neutral\", \"score\": number in [-1,1]}."

// Sentiment classifies the tone of the content. Model failures fall back
// to the lexicon scorer so the pipeline always gets a usable value.
func (a *Analyzer) Sentiment(ctx context.Context, content string) SentimentResult {
	if a.client == nil {
		return lexiconSentiment(content)
	}

	raw, err := a.client.Complete(ctx, sentimentSystemPrompt, truncateRunes(content, 2000))
	if err != nil {
		log.Printf("sentiment model call failed, using lexicon fallback: %v", err)
		return lexiconSentiment(content)
	}

	result, err := parseSentiment(raw)
	if err != nil {
		log.Printf("could not parse sentiment response, using lexicon fallback: %v", err)
		return lexiconSentiment(content)
	}
	return result
}

const factualitySystemPrompt = "You are a fact-checking assistant. Given a news article and retrieved evidence, " +
	"judge its factual credibility. Respond with a single JSON object and nothing else: " +
	"{\"verdict\": \"likely_real\"|\"likely_fake\"|\"uncertain\", \"factual_score\": integer 0-100, " +
	"\"confidence\": integer 0-100, \"rationale\": string}."

// Factuality submits the article plus collected evidence to the model and
// parses a structured judgment. Any failure yields the degraded default.
func (a *Analyzer) Factuality(ctx context.Context, title, content string, ev evidence.Set) FactualityResult {
	if a.client == nil {
		return DefaultFactuality()
	}

	prompt := buildFactualityPrompt(title, content, ev)
	raw, err := a.client.Complete(ctx, factualitySystemPrompt, prompt)
	if err != nil {
		log.Printf("factuality model call failed: %v", err)
		return DefaultFactuality()
	}

	result, err := parseFactuality(raw)
	if err != nil {
		log.Printf("could not parse factuality response: %v", err)
		return DefaultFactuality()
	}
	return result
}

// Prompt embedding caps per bundle, carried over from the original tuning
const (
	promptReferenceItems  = 3
	promptNewsItems       = 5
	promptDiscussionItems = 3
)

func buildFactualityPrompt(title, content string, ev evidence.Set) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ARTICLE TITLE: %s\n\n", title)
	fmt.Fprintf(&b, "ARTICLE CONTENT:\n%s\n", truncateRunes(content, 4000))

	b.WriteString("\nRETRIEVED EVIDENCE:\n")
	writeBundle(&b, "REFERENCE", ev.Reference, promptReferenceItems)
	writeBundle(&b, "NEWS", ev.News, promptNewsItems)
	writeBundle(&b, "DISCUSSION", ev.Discussion, promptDiscussionItems)

	return b.String()
}

func writeBundle(b *strings.Builder, heading string, bundle evidence.Bundle, limit int) {
	if !bundle.Available || bundle.ItemCount == 0 {
		fmt.Fprintf(b, "\n%s SOURCES: none available\n", heading)
		return
	}
	for i, item := range bundle.Items {
		if i >= limit {
			break
		}
		fmt.Fprintf(b, "\n%s SOURCE %d: %s\n%s\n", heading, i+1, item.SourceLabel, item.SnippetText)
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
