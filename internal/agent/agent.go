// Package agent orchestrates a verification: it fans out to the evidence
// providers and the sentiment analyzer concurrently, runs the factuality
// judgment over whatever evidence was collected, and folds everything into
// one scored verdict. Partial failure is the expected operating condition:
// the only error Evaluate ever returns for a running pipeline is input
// validation (plus ErrCapacity when the evaluation semaphore is exhausted);
// every downstream failure degrades into default values and a lower
// confidence instead.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"truthscan/internal/analysis"
	"truthscan/internal/config"
	"truthscan/internal/evidence"
)

// Final verdict labels
const (
	VerdictFake    = "FAKE"
	VerdictReal    = "REAL"
	VerdictUnknown = "UNKNOWN"
)

// Input length bounds
const (
	minTitleLen   = 3
	maxTitleLen   = 300
	minContentLen = 10
	maxContentLen = 5000
)

// ErrCapacity is returned when no evaluation slot is available at all.
// This is the one service-level failure callers must handle distinctly
// from input validation.
var ErrCapacity = errors.New("no evaluation capacity available")

// ValidationError reports an input that failed the length bounds check.
// The pipeline never starts when validation fails.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ScoreBreakdown carries the three independently computed components that
// the weighted policy combines into the total score
type ScoreBreakdown struct {
	SourceCredibility  int `json:"source_credibility"`
	ContentConsistency int `json:"content_consistency"`
	FactVerification   int `json:"fact_verification"`
}

// VerificationResult is the aggregate produced by one Evaluate call. It is
// immutable after construction; the agent is its only constructor.
type VerificationResult struct {
	Verdict          string                    `json:"verdict"`
	IsFake           bool                      `json:"is_fake"`
	Score            int                       `json:"score"`
	Confidence       int                       `json:"confidence"`
	Breakdown        ScoreBreakdown            `json:"breakdown"`
	Sentiment        analysis.SentimentResult  `json:"sentiment"`
	Factuality       analysis.FactualityResult `json:"factuality"`
	Evidence         evidence.Set              `json:"evidence"`
	ProcessingTimeMS int64                     `json:"processing_time_ms"`
}

// Analyzer is the content-analysis capability the agent depends on. Both
// operations absorb their own failures and return degraded defaults.
type Analyzer interface {
	Sentiment(ctx context.Context, content string) analysis.SentimentResult
	Factuality(ctx context.Context, title, content string, ev evidence.Set) analysis.FactualityResult
}

// Agent coordinates providers, analyzer and scoring policy
type Agent struct {
	discussion evidence.Provider
	reference  evidence.Provider
	news       evidence.Provider
	analyzer   Analyzer
	policy     config.Scoring
	slots      chan struct{}
}

// New creates an agent. The policy is copied at construction; changing the
// passed config afterwards has no effect on a live agent.
func New(discussion, reference, news evidence.Provider, analyzer Analyzer, policy config.Scoring) *Agent {
	maxConcurrent := policy.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Agent{
		discussion: discussion,
		reference:  reference,
		news:       news,
		analyzer:   analyzer,
		policy:     policy,
		slots:      make(chan struct{}, maxConcurrent),
	}
}

// Evaluate runs the full verification pipeline for one article
func (a *Agent) Evaluate(ctx context.Context, title, content string) (*VerificationResult, error) {
	if err := validateInput(title, content); err != nil {
		return nil, err
	}

	select {
	case a.slots <- struct{}{}:
		defer func() { <-a.slots }()
	default:
		return nil, ErrCapacity
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.policy.OverallTimeout)
	defer cancel()

	// Providers and sentiment are independent network calls; run them
	// concurrently, each under its own timeout.
	var (
		wg        sync.WaitGroup
		disc, ref evidence.Bundle
		news      evidence.Bundle
		sentiment analysis.SentimentResult
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		disc = a.fetchBundle(ctx, a.discussion, title)
	}()
	go func() {
		defer wg.Done()
		ref = a.fetchBundle(ctx, a.reference, title)
	}()
	go func() {
		defer wg.Done()
		news = a.fetchBundle(ctx, a.news, title)
	}()
	go func() {
		defer wg.Done()
		sentimentCtx, sentimentCancel := context.WithTimeout(ctx, a.policy.ProviderTimeout)
		defer sentimentCancel()
		sentiment = a.analyzer.Sentiment(sentimentCtx, content)
	}()
	wg.Wait()

	ev := evidence.Set{Discussion: disc, Reference: ref, News: news}

	// Factuality depends on the collected evidence, so it runs after the
	// fan-out. Partial or empty evidence is acceptable input.
	factCtx, factCancel := context.WithTimeout(ctx, a.policy.FactualityTimeout)
	factuality := a.analyzer.Factuality(factCtx, title, content, ev)
	factCancel()

	breakdown := a.scoreBreakdown(ev, factuality)
	score := a.totalScore(breakdown)
	confidence := a.adjustedConfidence(factuality.Confidence, ev)

	isFake := score < a.policy.FakeScoreCutoff || factuality.Verdict == analysis.VerdictLikelyFake
	verdict := a.verdict(isFake, confidence, ev, factuality)

	return &VerificationResult{
		Verdict:          verdict,
		IsFake:           isFake,
		Score:            score,
		Confidence:       confidence,
		Breakdown:        breakdown,
		Sentiment:        sentiment,
		Factuality:       factuality,
		Evidence:         ev,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}, nil
}

// fetchBundle runs one provider under its per-call timeout. The provider
// contract already absorbs errors; a nil-item bundle is normalized so the
// rest of the pipeline never sees nil slices.
func (a *Agent) fetchBundle(ctx context.Context, provider evidence.Provider, query string) evidence.Bundle {
	callCtx, cancel := context.WithTimeout(ctx, a.policy.ProviderTimeout)
	defer cancel()

	bundle := provider.Fetch(callCtx, query)
	if bundle.Items == nil {
		bundle.Items = []evidence.Item{}
	}
	return bundle
}

// verdict applies the decision policy. UNKNOWN means total information
// absence (everything failed) or a non-fake result we are not confident
// enough to call REAL.
func (a *Agent) verdict(isFake bool, confidence int, ev evidence.Set, factuality analysis.FactualityResult) string {
	analyzerFailed := factuality.Verdict == analysis.VerdictUncertain && factuality.Confidence == 0
	allFailed := !ev.Discussion.Available && !ev.Reference.Available && !ev.News.Available && analyzerFailed
	if allFailed {
		return VerdictUnknown
	}
	if isFake {
		return VerdictFake
	}
	if confidence >= a.policy.MinRealConfidence {
		return VerdictReal
	}
	return VerdictUnknown
}

func validateInput(title, content string) error {
	titleLen := utf8.RuneCountInString(title)
	if titleLen < minTitleLen || titleLen > maxTitleLen {
		return &ValidationError{
			Field:  "title",
			Reason: fmt.Sprintf("length must be between %d and %d characters", minTitleLen, maxTitleLen),
		}
	}
	contentLen := utf8.RuneCountInString(content)
	if contentLen < minContentLen || contentLen > maxContentLen {
		return &ValidationError{
			Field:  "content",
			Reason: fmt.Sprintf("length must be between %d and %d characters", minContentLen, maxContentLen),
		}
	}
	return nil
}
