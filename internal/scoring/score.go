// Package scoring judges a finished attempt against a quiz's answer key.
package scoring

import "quiz-attempt-service/internal/domain"

// Tier thresholds, in percent. Evaluated top-down, first match wins.
const (
	TopTierThreshold = 80
	MidTierThreshold = 50
)

var tierMessages = map[domain.Tier]string{
	domain.TierTop: "Excellent Work!",
	domain.TierMid: "Good Job!",
	domain.TierLow: "Better Luck Next Time!",
}

// Score computes the result of an attempt. It has no side effects and returns
// a freshly allocated result on every call.
func Score(quiz domain.Quiz, answers domain.AttemptAnswers) domain.AttemptResult {
	total := len(quiz.Questions)
	breakdown := make([]domain.QuestionVerdict, 0, total)
	correct := 0

	for i, q := range quiz.Questions {
		selected := append([]int{}, answers[i]...)
		key := q.CorrectIndices()

		ok := judge(q.Type, selected, key)
		if ok {
			correct++
		}
		breakdown = append(breakdown, domain.QuestionVerdict{
			Question:       q,
			Selected:       selected,
			CorrectIndices: key,
			IsCorrect:      ok,
		})
	}

	pct := Percentage(correct, total)
	tier := TierFor(pct)
	return domain.AttemptResult{
		Score:      correct,
		Total:      total,
		Percentage: pct,
		Tier:       tier,
		Message:    tierMessages[tier],
		Breakdown:  breakdown,
	}
}

// judge decides one question. An empty key is never satisfied.
func judge(typ domain.QuestionType, selected, key []int) bool {
	if len(key) == 0 {
		return false
	}
	if typ == domain.SingleChoice {
		if len(selected) == 0 {
			return false
		}
		return contains(key, selected[0])
	}
	return sameSet(selected, key)
}

// Percentage is round-half-up of score/total*100, and 0 when total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (score*200 + total) / (2 * total)
}

// TierFor maps a percentage onto its feedback band.
func TierFor(percentage int) domain.Tier {
	switch {
	case percentage >= TopTierThreshold:
		return domain.TierTop
	case percentage >= MidTierThreshold:
		return domain.TierMid
	default:
		return domain.TierLow
	}
}

// MessageFor returns the feedback line of a tier.
func MessageFor(tier domain.Tier) string {
	return tierMessages[tier]
}

func contains(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func sameSet(a, b []int) bool {
	as := make(map[int]struct{}, len(a))
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := make(map[int]struct{}, len(b))
	for _, v := range b {
		bs[v] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, ok := bs[v]; !ok {
			return false
		}
	}
	return true
}
