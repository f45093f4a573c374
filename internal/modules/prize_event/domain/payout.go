package domain

// Result classifies a settled wager
type Result string

const (
	ResultWin  Result = "win"
	ResultDraw Result = "draw"
	ResultLoss Result = "loss"
)

// MatchedCount counts wagered names present among the winning names
func MatchedCount(wagered, winning []string) int {
	matched := 0
	for _, name := range wagered {
		for _, win := range winning {
			if name == win {
				matched++
				break
			}
		}
	}
	return matched
}

// Payout applies the fixed paytable. Only the number of matches counts,
// not which specific items matched:
//
//	1 item wagered, 1 matched  → stake × 2
//	2 items wagered, 1 matched → total stake back (push)
//	2 items wagered, 2 matched → total stake × 4
//	anything else              → 0
func Payout(wagered []string, stakePerItem int64, winning []string) int64 {
	matched := MatchedCount(wagered, winning)
	total := stakePerItem * int64(len(wagered))

	switch len(wagered) {
	case 1:
		if matched >= 1 {
			return stakePerItem * 2
		}
	case 2:
		if matched == 1 {
			return total
		}
		if matched == 2 {
			return total * 4
		}
	}
	return 0
}

// Classify maps payout against total stake to win/draw/loss
func Classify(payout, totalStake int64) Result {
	switch {
	case payout > totalStake:
		return ResultWin
	case payout == totalStake && totalStake > 0:
		return ResultDraw
	default:
		return ResultLoss
	}
}
