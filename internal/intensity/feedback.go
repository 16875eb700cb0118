package intensity

import "fmt"

var ErrInvalidFeedback = fmt.Errorf("invalid feedback value")

// Feedback is the subjective post-workout rating sent by the app.
// It can be one of:
//   - keep_going
//   - neutral
//   - finally_challenge
//   - easy_killer
//   - flag_review
type Feedback string

const (
	FeedbackKeepGoing        Feedback = "keep_going"
	FeedbackNeutral          Feedback = "neutral"
	FeedbackFinallyChallenge Feedback = "finally_challenge"
	FeedbackEasyKiller       Feedback = "easy_killer"
	FeedbackFlagReview       Feedback = "flag_review"
)

func (f Feedback) String() string {
	return string(f)
}

func (f Feedback) IsValid() bool {
	switch f {
	case FeedbackKeepGoing,
		FeedbackNeutral,
		FeedbackFinallyChallenge,
		FeedbackEasyKiller,
		FeedbackFlagReview:
		return true
	default:
		return false
	}
}

// ScoreDelta returns the score contribution of the feedback value.
func (f Feedback) ScoreDelta() float64 {
	switch f {
	case FeedbackKeepGoing:
		return 20
	case FeedbackFinallyChallenge:
		return 10
	case FeedbackNeutral:
		return 0
	case FeedbackEasyKiller:
		return -15
	case FeedbackFlagReview:
		return -5
	default:
		return 0
	}
}

// ParseFeedback rejects unknown values at the input boundary,
// instead of silently defaulting them to neutral.
func ParseFeedback(value string) (Feedback, error) {
	f := Feedback(value)
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFeedback, value)
	}
	return f, nil
}
