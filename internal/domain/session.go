package domain

// Stage is the position of a user inside the checkout dialogue.
type Stage string

const (
	StageBrowsing        Stage = "browsing"
	StageAwaitingAddress Stage = "awaiting_address"
	StageAwaitingPhone   Stage = "awaiting_phone"
	StageReview          Stage = "review"
	StageSubmitting      Stage = "submitting"
)

var transitions = map[Stage][]Stage{
	StageBrowsing:        {StageAwaitingAddress},
	StageAwaitingAddress: {StageAwaitingPhone, StageAwaitingAddress, StageBrowsing},
	StageAwaitingPhone:   {StageReview, StageAwaitingAddress, StageBrowsing},
	StageReview:          {StageSubmitting, StageAwaitingAddress, StageBrowsing},
	StageSubmitting:      {StageReview, StageBrowsing},
}

// CanTransitionTo reports whether the dialogue may move from one stage to another.
func CanTransitionTo(from, to Stage) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsCapturing reports whether free text is expected from the user.
func (s Stage) IsCapturing() bool {
	return s == StageAwaitingAddress || s == StageAwaitingPhone
}

// String representation (for logging)
func (s Stage) String() string {
	return string(s)
}

// Session holds the fields captured during one checkout attempt. Ordered is the
// cart snapshot of the order in flight while the stage is submitting.
type Session struct {
	Stage   Stage
	Address string
	Phone   string
	OrderID string
	Ordered []CartLine
}
