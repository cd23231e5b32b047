package conversation

// Judge decides whether a play lands. Need returns the success rate, in
// [1, 100], that a play at rate must reach; the play succeeds when
// rate >= Need(rate).
type Judge interface {
	Need(rate int) int
}

// steadyJudge carries unused confidence from one play to the next, so the
// share of successes across a session tracks each play's rate without any
// randomness. A rate of 100 always lands and a rate of 0 never does.
type steadyJudge struct {
	carry int
}

// NewJudge returns the default judge. It starts half full, so the first
// play lands when its rate is at least 50.
func NewJudge() Judge {
	return &steadyJudge{carry: 50}
}

func (j *steadyJudge) Need(rate int) int {
	need := 100 - j.carry
	if rate >= need {
		j.carry = rate - need
	} else {
		j.carry += rate
	}
	return need
}
