package intensity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// hashFormatVersion is baked into the hashed payload so a future change of
// the canonical serialization cannot silently collide with v1 digests.
const hashFormatVersion = "v1"

// HashRecord produces the deterministic SHA-256 digest of the numeric fields
// of a workout session plus its total intensity score. The digest is the only
// representation of the raw performance data that leaves the device, so the
// serialization is a fixed-order tuple with explicit separators: plain field
// concatenation would make reps=1,sets=23 and reps=12,sets=3 collide.
func HashRecord(session WorkoutSession, totalScore float64) (string, error) {
	fields := []string{
		hashFormatVersion,
		strconv.Itoa(session.Reps),
		strconv.Itoa(session.Sets),
		strconv.FormatFloat(session.Weight, 'f', -1, 64),
		strconv.Itoa(session.WorkoutTimeMinutes),
		strconv.Itoa(session.EstimatedCalories),
		strconv.FormatFloat(totalScore, 'f', -1, 64),
	}

	h := sha256.New()
	if _, err := h.Write([]byte(strings.Join(fields, "|"))); err != nil {
		// a failed digest must fail the record's submission, a placeholder
		// hash must never be sent instead
		return "", fmt.Errorf("write hash input: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
