package intensity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItIsYeBananaduck/git-fit/internal/intensity"
)

func TestParseFeedback(t *testing.T) {
	for _, valid := range []string{
		"keep_going", "neutral", "finally_challenge", "easy_killer", "flag_review",
	} {
		f, err := intensity.ParseFeedback(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, f.String())
		assert.True(t, f.IsValid())
	}

	for _, invalid := range []string{"", "keepgoing", "KEEP_GOING", "great", "flag"} {
		_, err := intensity.ParseFeedback(invalid)
		assert.ErrorIs(t, err, intensity.ErrInvalidFeedback)
	}
}

func TestWorkoutSession_Validate(t *testing.T) {
	valid := sessionWithFeedback(intensity.FeedbackNeutral)
	require.NoError(t, valid.Validate())

	noUser := valid
	noUser.UserID = ""
	assert.Error(t, noUser.Validate())

	negativeReps := valid
	negativeReps.Reps = -1
	assert.Error(t, negativeReps.Validate())

	zeroSets := valid
	zeroSets.Sets = 0
	assert.Error(t, zeroSets.Validate())

	noTime := valid
	noTime.WorkoutTimeMinutes = 0
	assert.Error(t, noTime.Validate())

	badFeedback := valid
	unknown := intensity.Feedback("amazing")
	badFeedback.Feedback = &unknown
	assert.ErrorIs(t, badFeedback.Validate(), intensity.ErrInvalidFeedback)

	// zero reps alone is a legal session (e.g. aborted workout)
	zeroReps := valid
	zeroReps.Reps = 0
	assert.NoError(t, zeroReps.Validate())
}
