package lesson

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/edulabbr/oratoria/core"
	"github.com/edulabbr/oratoria/core/content"
)

// Module types. One learning unit per type: a slide summary, a quiz, or a
// speaking exercise.
const (
	ModuleTypeSummary  = "summary"
	ModuleTypeTasks    = "tasks"
	ModuleTypeSpeaking = "speaking"
)

var AllModuleTypes = []string{ModuleTypeSummary, ModuleTypeTasks, ModuleTypeSpeaking}

// Upload statuses.
const (
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusError      = "error"
)

type (
	// CourseModule groups lessons into a course section.
	CourseModule struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description,omitempty"`
		OrderIndex  int       `json:"order_index"`
		CreatedBy   string    `json:"created_by,omitempty"`
		CreatedAt   time.Time `json:"created_at,omitempty"`
		UpdatedAt   time.Time `json:"updated_at,omitempty"`
	}

	Lesson struct {
		ID             string    `json:"id"`
		CourseModuleID string    `json:"course_module_id,omitempty"`
		Title          string    `json:"title"`
		Description    string    `json:"description,omitempty"`
		CoverEmoji     string    `json:"cover_emoji,omitempty"`
		OrderIndex     int       `json:"order_index"`
		IsPublished    *bool     `json:"is_published,omitempty"`
		CreatedBy      string    `json:"created_by,omitempty"`
		CreatedAt      time.Time `json:"created_at,omitempty"`
		UpdatedAt      time.Time `json:"updated_at,omitempty"`
	}

	// Module is one learning unit inside a lesson. Content carries the
	// generated per-slide material and is persisted as JSONB.
	Module struct {
		ID         string                `json:"id"`
		LessonID   string                `json:"lesson_id"`
		Type       string                `json:"type"`
		Title      string                `json:"title"`
		Content    content.ModuleContent `json:"content"`
		OrderIndex int                   `json:"order_index"`
		CreatedAt  time.Time             `json:"created_at,omitempty"`
		UpdatedAt  time.Time             `json:"updated_at,omitempty"`
	}

	// Upload tracks one deck upload through the processing pipeline.
	Upload struct {
		ID          string    `json:"id"`
		Filename    string    `json:"filename"`
		StoragePath string    `json:"storage_path"`
		LessonID    string    `json:"lesson_id"`
		Status      string    `json:"status"`
		UploadedBy  string    `json:"uploaded_by,omitempty"`
		CreatedAt   time.Time `json:"created_at,omitempty"`
		UpdatedAt   time.Time `json:"updated_at,omitempty"`
	}
)

func (l *Lesson) Published() bool {
	if l.IsPublished == nil {
		return false
	}
	return *l.IsPublished
}

func (l *Lesson) SetPublished(published bool) {
	l.IsPublished = &published
}

type (
	NewCourseModule struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		OrderIndex  int    `json:"order_index" validate:"gte=0"`
	}

	UpdateCourseModule struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		OrderIndex  *int   `json:"order_index" validate:"omitempty,gte=0"`
	}

	NewLesson struct {
		CourseModuleID string `json:"course_module_id"`
		Title          string `json:"title" validate:"required"`
		Description    string `json:"description"`
		CoverEmoji     string `json:"cover_emoji"`
		OrderIndex     int    `json:"order_index" validate:"gte=0"`
	}

	UpdateLesson struct {
		CourseModuleID string `json:"course_module_id"`
		Title          string `json:"title"`
		Description    string `json:"description"`
		CoverEmoji     string `json:"cover_emoji"`
		OrderIndex     *int   `json:"order_index" validate:"omitempty,gte=0"`
		IsPublished    *bool  `json:"is_published"`
	}

	UpdateModule struct {
		Title      string                 `json:"title"`
		Content    *content.ModuleContent `json:"content"`
		OrderIndex *int                   `json:"order_index" validate:"omitempty,gte=0"`
	}

	// NewUpload is validated before any blob is stored.
	NewUpload struct {
		Filename    string `json:"filename" validate:"required,deckfile"`
		LessonTitle string `json:"lesson_title"`
	}
)

func (ncm *NewCourseModule) Clean() {
	ncm.Title = core.CleanString(ncm.Title)
	ncm.Description = core.CleanString(ncm.Description)
}

func (ncm *NewCourseModule) Validate(validate *validator.Validate) error {
	ncm.Clean()
	return validate.Struct(ncm)
}

func (ucm *UpdateCourseModule) Clean() {
	ucm.Title = core.CleanString(ucm.Title)
	ucm.Description = core.CleanString(ucm.Description)
}

func (ucm *UpdateCourseModule) Validate(validate *validator.Validate) error {
	ucm.Clean()
	return validate.Struct(ucm)
}

func (nl *NewLesson) Clean() {
	nl.Title = core.CleanString(nl.Title)
	nl.Description = core.CleanString(nl.Description)
	nl.CoverEmoji = core.CleanString(nl.CoverEmoji)
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Clean()
	return validate.Struct(nl)
}

func (ul *UpdateLesson) Clean() {
	ul.Title = core.CleanString(ul.Title)
	ul.Description = core.CleanString(ul.Description)
	ul.CoverEmoji = core.CleanString(ul.CoverEmoji)
}

func (ul *UpdateLesson) Validate(validate *validator.Validate) error {
	ul.Clean()
	return validate.Struct(ul)
}

func (um *UpdateModule) Clean() {
	um.Title = core.CleanString(um.Title)
}

func (um *UpdateModule) Validate(validate *validator.Validate) error {
	um.Clean()
	return validate.Struct(um)
}

func (nu *NewUpload) Clean() {
	nu.Filename = core.CleanString(nu.Filename)
	nu.LessonTitle = core.CleanString(nu.LessonTitle)
}

func (nu *NewUpload) Validate(validate *validator.Validate) error {
	nu.Clean()
	return validate.Struct(nu)
}

// QueryFilter for lessons.
type QueryFilter struct {
	CourseModuleID string `query:"course_module_id"`
	IsPublished    *bool  `query:"is_published"`
	CreatedBy      string `query:"created_by"`
}

func (f *QueryFilter) Clean() {
	f.CourseModuleID = core.CleanString(f.CourseModuleID)
	f.CreatedBy = core.CleanString(f.CreatedBy)
}
