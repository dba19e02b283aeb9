/*
rating.go - Bradford Factor absence rating

PURPOSE:
  Computes the absenteeism score used to flag high-absenteeism employees:

      B = S^2 * D

  where S is the number of absence spells and D the total days absent in
  the rating window. Frequent short absences score far higher than one
  long absence (https://en.wikipedia.org/wiki/Bradford_Factor).

INPUTS:
  The spell count and day total are counted over the current calendar
  year, restricted to sickness absences, and supplied by the DataStore.
  Rating itself is a pure function.

SEE ALSO:
  - lifecycle.go: RefreshRating orchestrates the recomputation
*/
package absence

// Rating returns the Bradford Factor for the given spell count and total
// days absent. Negative inputs are rejected rather than propagated into a
// nonsensical score.
func Rating(spells, daysAbsent int) (int, error) {
	if spells < 0 {
		return 0, &ValidationError{Field: "spells", Msg: "absence count cannot be negative"}
	}
	if daysAbsent < 0 {
		return 0, &ValidationError{Field: "days_absent", Msg: "total days absent cannot be negative"}
	}
	return spells * spells * daysAbsent, nil
}

// =============================================================================
// RATING GAUGE - Dashboard banding
// =============================================================================

// RatingGauge is the banded view of a rating shown on the dashboard meter.
// Intervals are the band upper bounds; the last one stretches to cover
// ratings above the nominal 1000-point scale.
type RatingGauge struct {
	Value     int
	Intervals []int
}

// GaugeFor builds the dashboard gauge for a rating.
func GaugeFor(rating int) RatingGauge {
	max := 1000
	if rating > max {
		max = rating
	}
	return RatingGauge{
		Value:     rating,
		Intervals: []int{201, 401, 601, 801, max},
	}
}
