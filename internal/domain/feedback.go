package domain

import "fmt"

// FeedbackRating is the recall-quality signal a learner provides after
// seeing a card. The set is closed and ordered: Again < Hard < Good < Easy.
type FeedbackRating string

// Possible feedback ratings, from worst to best recall.
const (
	FeedbackAgain FeedbackRating = "again"
	FeedbackHard  FeedbackRating = "hard"
	FeedbackGood  FeedbackRating = "good"
	FeedbackEasy  FeedbackRating = "easy"
)

var feedbackRanks = map[FeedbackRating]int{
	FeedbackAgain: 0,
	FeedbackHard:  1,
	FeedbackGood:  2,
	FeedbackEasy:  3,
}

// IsValid reports whether the rating is one of the closed set.
func (f FeedbackRating) IsValid() bool {
	_, ok := feedbackRanks[f]
	return ok
}

// Rank returns the rating's position in the ordered set, 0 being the worst
// (Again) and 3 the best (Easy). Unknown ratings rank as -1.
func (f FeedbackRating) Rank() int {
	rank, ok := feedbackRanks[f]
	if !ok {
		return -1
	}
	return rank
}

// WorseThan reports whether f signals strictly worse recall than other.
func (f FeedbackRating) WorseThan(other FeedbackRating) bool {
	return f.Rank() < other.Rank()
}

// ParseFeedbackRating converts a raw string into a FeedbackRating.
// Returns ErrInvalidFeedback for anything outside the closed set.
func ParseFeedbackRating(raw string) (FeedbackRating, error) {
	rating := FeedbackRating(raw)
	if !rating.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFeedback, raw)
	}
	return rating, nil
}
