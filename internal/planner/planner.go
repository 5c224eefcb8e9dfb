// Package planner implements the study schedule allocation engine: a pure,
// deterministic greedy heuristic that converts subjects, weekly availability
// and a start date into a bounded set of dated study sessions. It performs
// no I/O and keeps no state; callers own persistence and merge policy.
package planner

import (
	"math"
	"sort"
	"time"

	"github.com/studyflow/studyflow-api/internal/models"
)

const (
	// HorizonDays is the fixed planning window generated per call.
	HorizonDays = 14
	// MinSessionMinutes is the shortest session worth creating. Computed
	// allocations below this are rounded up rather than dropped, so a day
	// with spare room never produces useless micro-sessions.
	MinSessionMinutes = 30
	// MaxSessionMinutes caps a single sitting.
	MaxSessionMinutes = 120
	// urgencyTieWindowDays treats exams this close together as equally
	// urgent, letting priority weight decide the order instead.
	urgencyTieWindowDays = 3
)

// GenerateSchedule produces study sessions covering [startDate, startDate+14)
// at calendar-day granularity. Empty subjects or availability is a defined
// no-op, not an error. Inputs are never mutated; identical inputs yield an
// identical result, including session order and IDs.
func GenerateSchedule(subjects []models.Subject, availability []models.DailyAvailability, startDate time.Time, ownerID string) []models.StudySession {
	if len(subjects) == 0 || len(availability) == 0 {
		return nil
	}

	start := DateOnly(startDate)
	ordered := orderByUrgency(subjects, start)

	// 7-slot capacity table indexed by time.Weekday; missing entries stay 0.
	var hoursByWeekday [7]float64
	for _, a := range availability {
		if a.DayOfWeek >= 0 && a.DayOfWeek < 7 {
			hoursByWeekday[a.DayOfWeek] = a.AvailableHours
		}
	}

	var sessions []models.StudySession
	for offset := 0; offset < HorizonDays; offset++ {
		day := start.AddDate(0, 0, offset)
		availableMinutes := hoursByWeekday[int(day.Weekday())] * 60
		if availableMinutes <= 0 {
			continue
		}

		assignedMinutes := 0.0
		for _, subject := range ordered {
			examDay := DateOnly(subject.ExamDate)
			if examDay.Before(day) {
				continue
			}

			// Spread the subject's remaining need evenly over its remaining
			// days, inflated by priority. Floored at 1 day so the exam day
			// itself does not divide by zero.
			daysToExam := daysBetween(day, examDay)
			if daysToExam < 1 {
				daysToExam = 1
			}
			idealMinutes := subject.EstimatedStudyHours * 60 * subject.Priority.Weight() / float64(daysToExam)

			remainingMinutes := availableMinutes - assignedMinutes
			if remainingMinutes < MinSessionMinutes {
				break
			}

			duration := math.Min(idealMinutes, math.Min(MaxSessionMinutes, remainingMinutes))
			if duration < MinSessionMinutes {
				// Deliberate overshoot of the ideal: with at least
				// MinSessionMinutes of room left, a full minimum-length
				// session is still scheduled.
				duration = MinSessionMinutes
			}

			sessions = append(sessions, models.StudySession{
				ID:        SessionID(subject.ID, day),
				SubjectID: subject.ID,
				Date:      day,
				Duration:  int(math.Floor(duration)),
				Completed: false,
				OwnerID:   ownerID,
			})

			assignedMinutes += duration
			if assignedMinutes >= availableMinutes {
				break
			}
		}
	}

	return sessions
}

// orderByUrgency sorts a copy of the subjects: soonest exam first, except
// exams within the tie window of each other are ordered by descending
// priority weight. The order is computed once against the start date and
// reused for every day of the horizon.
func orderByUrgency(subjects []models.Subject, start time.Time) []models.Subject {
	ordered := make([]models.Subject, len(subjects))
	copy(ordered, subjects)
	sort.SliceStable(ordered, func(i, j int) bool {
		di := daysBetween(start, DateOnly(ordered[i].ExamDate))
		dj := daysBetween(start, DateOnly(ordered[j].ExamDate))
		if abs(di-dj) > urgencyTieWindowDays {
			return di < dj
		}
		return ordered[i].Priority.Weight() > ordered[j].Priority.Weight()
	})
	return ordered
}

// SessionID derives the deterministic identifier for a (subject, date) pair.
// Regenerating a plan therefore proposes the same IDs, which is what lets
// callers merge against previously stored sessions.
func SessionID(subjectID string, date time.Time) string {
	return subjectID + "-" + date.Format("2006-01-02")
}

// DateOnly truncates a timestamp to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from one date to another. Both
// arguments are expected to be midnight-normalized; rounding absorbs DST
// shifted days.
func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
