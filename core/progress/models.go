package progress

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/edulabbr/oratoria/core"
)

type (
	// Score is one completed module attempt by a student.
	Score struct {
		ID               string    `json:"id"`
		StudentID        string    `json:"student_id"`
		ModuleID         string    `json:"module_id,omitempty"`
		LessonID         string    `json:"lesson_id"`
		ModuleType       string    `json:"module_type"`
		Score            int       `json:"score"`
		TimeSpentSeconds int       `json:"time_spent_seconds"`
		CreatedAt        time.Time `json:"created_at,omitempty"`
	}

	// StudentPerformance is the per-(student, lesson) rollup behind the
	// dashboards. Recomputed from scores on read.
	StudentPerformance struct {
		StudentID        string    `json:"student_id"`
		StudentName      string    `json:"student_name,omitempty"`
		LessonID         string    `json:"lesson_id"`
		LessonTitle      string    `json:"lesson_title,omitempty"`
		AverageScore     float64   `json:"average_score"`
		ModulesCompleted int       `json:"modules_completed"`
		TimeSpentSeconds int       `json:"time_spent_seconds"`
		LastActivity     time.Time `json:"last_activity"`
	}
)

type (
	NewScore struct {
		ModuleID         string `json:"module_id" validate:"required"`
		Score            int    `json:"score" validate:"gte=0,lte=100"`
		TimeSpentSeconds int    `json:"time_spent_seconds" validate:"gte=0"`
	}

	// NewSpeechAttempt carries a finalized transcript; scoring happens
	// server-side against the module's target phrase.
	NewSpeechAttempt struct {
		ModuleID         string `json:"module_id" validate:"required"`
		Transcript       string `json:"transcript"`
		TimeSpentSeconds int    `json:"time_spent_seconds" validate:"gte=0"`
	}
)

func (ns *NewScore) Clean() {
	ns.ModuleID = core.CleanString(ns.ModuleID)
}

func (ns *NewScore) Validate(validate *validator.Validate) error {
	ns.Clean()
	return validate.Struct(ns)
}

func (na *NewSpeechAttempt) Clean() {
	na.ModuleID = core.CleanString(na.ModuleID)
	na.Transcript = core.CleanString(na.Transcript)
}

func (na *NewSpeechAttempt) Validate(validate *validator.Validate) error {
	na.Clean()
	return validate.Struct(na)
}
