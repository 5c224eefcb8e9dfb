package dto

import "time"

// DashboardSummaryResponse aggregates the owner's study status.
type DashboardSummaryResponse struct {
	Progress         ProgressSection   `json:"progress"`
	UpcomingSessions []UpcomingSession `json:"upcomingSessions"`
	UpcomingExams    []UpcomingExam    `json:"upcomingExams"`
}

// ProgressSection summarises session completion.
type ProgressSection struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// UpcomingSession is a pending session within the lookahead window, joined
// with its subject for display.
type UpcomingSession struct {
	ID           string    `json:"id"`
	SubjectID    string    `json:"subjectId"`
	SubjectName  string    `json:"subjectName"`
	SubjectColor string    `json:"subjectColor"`
	Date         time.Time `json:"date"`
	Duration     int       `json:"duration"`
}

// UpcomingExam is an exam landing inside the exam lookahead window.
type UpcomingExam struct {
	SubjectID     string    `json:"subjectId"`
	Name          string    `json:"name"`
	Color         string    `json:"color"`
	Priority      string    `json:"priority"`
	ExamDate      time.Time `json:"examDate"`
	DaysUntilExam int       `json:"daysUntilExam"`
}
