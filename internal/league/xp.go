package league

// XP values per scored attempt.
const (
	xpBonusQuestion = 10
	xpCorrectAnswer = 20

	// minAttemptMillis is the anti-spam floor: answers submitted faster than
	// this are treated as tap-through and earn nothing.
	minAttemptMillis = 3000
)

// ComputeXP returns the XP earned by a single scored attempt.
func ComputeXP(isCorrect, isBonusQuestion bool, timeTakenMs int64) int {
	if !isCorrect {
		return 0
	}
	if timeTakenMs < minAttemptMillis {
		return 0
	}
	if isBonusQuestion {
		return xpBonusQuestion
	}
	return xpCorrectAnswer
}

func clampTier(tier int) int {
	if tier < MinTier {
		return MinTier
	}
	if tier > MaxTier {
		return MaxTier
	}
	return tier
}
