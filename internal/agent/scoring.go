package agent

import (
	"math"

	"truthscan/internal/analysis"
	"truthscan/internal/evidence"
)

// Scoring policy. The tier boundaries and weights are carried over from
// the original hand-tuned values, rescaled so each breakdown component
// lives on its own 0-100 axis and the config weights combine them.

// scoreBreakdown computes the three components from disjoint evidence
// subsets: discussion volume + news outlet diversity feed credibility,
// news corroboration + reference corroboration feed consistency, and the
// model's factual score passes through unchanged.
func (a *Agent) scoreBreakdown(ev evidence.Set, factuality analysis.FactualityResult) ScoreBreakdown {
	return ScoreBreakdown{
		SourceCredibility:  a.sourceCredibility(ev),
		ContentConsistency: contentConsistency(ev),
		FactVerification:   factuality.FactualScore,
	}
}

// sourceCredibility rates how much independent chatter and outlet
// diversity surrounds the claim. Absence of discussion is weak evidence
// either way, so zero items earn the configured floor rather than zero.
func (a *Agent) sourceCredibility(ev evidence.Set) int {
	discussionScore := a.policy.CredibilityFloor
	switch count := ev.Discussion.ItemCount; {
	case count >= 8:
		discussionScore = 50
	case count >= 4:
		discussionScore = 33
	case count >= 1:
		discussionScore = 17
	}

	diversityScore := ev.News.SourceCount * 10
	if diversityScore > 50 {
		diversityScore = 50
	}

	return clampScore(discussionScore + diversityScore)
}

// contentConsistency rates how broadly independent coverage corroborates
// the claim, with a bonus when encyclopedia background exists for it
func contentConsistency(ev evidence.Set) int {
	var corroboration int
	switch count := ev.News.ItemCount; {
	case count >= 5:
		corroboration = 70
	case count >= 3:
		corroboration = 47
	case count >= 1:
		corroboration = 23
	}

	var referenceBonus int
	switch count := ev.Reference.ItemCount; {
	case count >= 3:
		referenceBonus = 30
	case count >= 1:
		referenceBonus = 15
	}

	return clampScore(corroboration + referenceBonus)
}

// totalScore combines the breakdown with the configured weights
func (a *Agent) totalScore(breakdown ScoreBreakdown) int {
	weighted := a.policy.SourceCredibilityWeight*float64(breakdown.SourceCredibility) +
		a.policy.ContentConsistencyWeight*float64(breakdown.ContentConsistency) +
		a.policy.FactVerificationWeight*float64(breakdown.FactVerification)
	return clampScore(int(math.Round(weighted)))
}

// adjustedConfidence lowers the model's confidence by a fixed penalty for
// every evidence provider that failed, floored at zero
func (a *Agent) adjustedConfidence(modelConfidence int, ev evidence.Set) int {
	confidence := modelConfidence
	for _, bundle := range []evidence.Bundle{ev.Discussion, ev.Reference, ev.News} {
		if !bundle.Available {
			confidence -= a.policy.UnavailablePenalty
		}
	}
	if confidence < 0 {
		confidence = 0
	}
	return clampScore(confidence)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
