package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/edulabbr/oratoria/core"
	"github.com/edulabbr/oratoria/core/content"
	"github.com/edulabbr/oratoria/core/lesson"
)

type (
	courseModuleRow struct {
		ID          string      `db:"id"`
		Title       string      `db:"title"`
		Description null.String `db:"description"`
		OrderIndex  int         `db:"order_index"`
		CreatedBy   null.String `db:"created_by"`
		CreatedAt   time.Time   `db:"created_at"`
		UpdatedAt   time.Time   `db:"updated_at"`
	}

	lessonRow struct {
		ID             string      `db:"id"`
		CourseModuleID null.String `db:"course_module_id"`
		Title          string      `db:"title"`
		Description    null.String `db:"description"`
		CoverEmoji     null.String `db:"cover_emoji"`
		OrderIndex     int         `db:"order_index"`
		IsPublished    bool        `db:"is_published"`
		CreatedBy      null.String `db:"created_by"`
		CreatedAt      time.Time   `db:"created_at"`
		UpdatedAt      time.Time   `db:"updated_at"`
	}

	moduleRow struct {
		ID          string          `db:"id"`
		LessonID    string          `db:"lesson_id"`
		Type        string          `db:"type"`
		Title       string          `db:"title"`
		ContentJSON json.RawMessage `db:"content_json"`
		OrderIndex  int             `db:"order_index"`
		CreatedAt   time.Time       `db:"created_at"`
		UpdatedAt   time.Time       `db:"updated_at"`
	}

	uploadRow struct {
		ID          string      `db:"id"`
		Filename    string      `db:"filename"`
		StoragePath string      `db:"storage_path"`
		LessonID    string      `db:"lesson_id"`
		Status      string      `db:"status"`
		UploadedBy  null.String `db:"uploaded_by"`
		CreatedAt   time.Time   `db:"created_at"`
		UpdatedAt   time.Time   `db:"updated_at"`
	}
)

func (r courseModuleRow) toCourseModule() lesson.CourseModule {
	return lesson.CourseModule{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description.String,
		OrderIndex:  r.OrderIndex,
		CreatedBy:   r.CreatedBy.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (r lessonRow) toLesson() lesson.Lesson {
	lsn := lesson.Lesson{
		ID:             r.ID,
		CourseModuleID: r.CourseModuleID.String,
		Title:          r.Title,
		Description:    r.Description.String,
		CoverEmoji:     r.CoverEmoji.String,
		OrderIndex:     r.OrderIndex,
		CreatedBy:      r.CreatedBy.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	lsn.SetPublished(r.IsPublished)
	return lsn
}

func (r moduleRow) toModule() (lesson.Module, error) {
	var mc content.ModuleContent
	if len(r.ContentJSON) > 0 {
		if err := json.Unmarshal(r.ContentJSON, &mc); err != nil {
			return lesson.Module{}, errors.Wrapf(err, "decoding content of module %s", r.ID)
		}
	}
	return lesson.Module{
		ID:         r.ID,
		LessonID:   r.LessonID,
		Type:       r.Type,
		Title:      r.Title,
		Content:    mc,
		OrderIndex: r.OrderIndex,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

func (r uploadRow) toUpload() lesson.Upload {
	return lesson.Upload{
		ID:          r.ID,
		Filename:    r.Filename,
		StoragePath: r.StoragePath,
		LessonID:    r.LessonID,
		Status:      r.Status,
		UploadedBy:  r.UploadedBy.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const (
	courseModuleColumns = `id, title, description, order_index, created_by, created_at, updated_at`
	lessonColumns       = `id, course_module_id, title, description, cover_emoji, order_index, is_published, created_by, created_at, updated_at`
	moduleColumns       = `id, lesson_id, type, title, content_json, order_index, created_at, updated_at`
	uploadColumns       = `id, filename, storage_path, lesson_id, status, uploaded_by, created_at, updated_at`
)

type lessonRepository struct {
	db *sqlx.DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *sqlx.DB) lesson.Repository {
	return &lessonRepository{db: db}
}

// course modules

func (repo *lessonRepository) CreateCourseModule(ctx context.Context, cm lesson.CourseModule) (lesson.CourseModule, error) {
	query := `
		INSERT INTO course_modules (title, description, order_index, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + courseModuleColumns

	var row courseModuleRow
	err := repo.db.GetContext(ctx, &row, query,
		cm.Title, nullStr(cm.Description), cm.OrderIndex, nullStr(cm.CreatedBy), cm.CreatedAt, cm.UpdatedAt)
	if err != nil {
		return lesson.CourseModule{}, errors.Wrap(err, "creating course module")
	}
	return row.toCourseModule(), nil
}

func (repo *lessonRepository) QueryCourseModules(ctx context.Context) ([]lesson.CourseModule, error) {
	var rows []courseModuleRow
	query := `SELECT ` + courseModuleColumns + ` FROM course_modules ORDER BY order_index`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying course modules")
	}
	cms := make([]lesson.CourseModule, len(rows))
	for i, row := range rows {
		cms[i] = row.toCourseModule()
	}
	return cms, nil
}

func (repo *lessonRepository) UpdateCourseModule(ctx context.Context, cm lesson.CourseModule, orderIndex *int) (lesson.CourseModule, error) {
	var sets []string
	var args []interface{}

	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if cm.Title != "" {
		set("title", cm.Title)
	}
	if cm.Description != "" {
		set("description", cm.Description)
	}
	if orderIndex != nil {
		set("order_index", *orderIndex)
	}
	if !cm.UpdatedAt.IsZero() {
		set("updated_at", cm.UpdatedAt)
	}
	if len(sets) == 0 {
		return repo.getCourseModule(ctx, cm.ID)
	}

	args = append(args, cm.ID)
	query := fmt.Sprintf(
		`UPDATE course_modules SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), courseModuleColumns)

	var row courseModuleRow
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lesson.CourseModule{}, lesson.ErrCourseModuleNotFound
		}
		return lesson.CourseModule{}, errors.Wrap(err, "updating course module")
	}
	return row.toCourseModule(), nil
}

func (repo *lessonRepository) getCourseModule(ctx context.Context, id string) (lesson.CourseModule, error) {
	var row courseModuleRow
	query := `SELECT ` + courseModuleColumns + ` FROM course_modules WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lesson.CourseModule{}, lesson.ErrCourseModuleNotFound
		}
		return lesson.CourseModule{}, errors.Wrap(err, "getting course module")
	}
	return row.toCourseModule(), nil
}

// lessons

func (repo *lessonRepository) CreateLesson(ctx context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	query := `
		INSERT INTO lessons (course_module_id, title, description, cover_emoji, order_index, is_published, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + lessonColumns

	var row lessonRow
	err := repo.db.GetContext(ctx, &row, query,
		nullStr(lsn.CourseModuleID), lsn.Title, nullStr(lsn.Description), nullStr(lsn.CoverEmoji),
		lsn.OrderIndex, lsn.Published(), nullStr(lsn.CreatedBy), lsn.CreatedAt, lsn.UpdatedAt)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "creating lesson")
	}
	return row.toLesson(), nil
}

func (repo *lessonRepository) GetLessonByID(ctx context.Context, id string) (lesson.Lesson, error) {
	var row lessonRow
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lesson.Lesson{}, lesson.ErrLessonNotFound
		}
		return lesson.Lesson{}, errors.Wrap(err, "getting lesson")
	}
	return row.toLesson(), nil
}

func (repo *lessonRepository) FilterLessons(ctx context.Context, filter lesson.QueryFilter, ordering ...core.DBOrdering) ([]lesson.Lesson, error) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CourseModuleID != "" {
		conds = append(conds, "course_module_id = "+arg(filter.CourseModuleID))
	}
	if filter.IsPublished != nil {
		conds = append(conds, "is_published = "+arg(*filter.IsPublished))
	}
	if filter.CreatedBy != "" {
		conds = append(conds, "created_by = "+arg(filter.CreatedBy))
	}

	query := `SELECT ` + lessonColumns + ` FROM lessons`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "order_index")

	var rows []lessonRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering lessons")
	}
	lsns := make([]lesson.Lesson, len(rows))
	for i, row := range rows {
		lsns[i] = row.toLesson()
	}
	return lsns, nil
}

func (repo *lessonRepository) UpdateLesson(ctx context.Context, lsn lesson.Lesson, orderIndex *int, isPublished *bool) (lesson.Lesson, error) {
	var sets []string
	var args []interface{}

	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if lsn.CourseModuleID != "" {
		set("course_module_id", lsn.CourseModuleID)
	}
	if lsn.Title != "" {
		set("title", lsn.Title)
	}
	if lsn.Description != "" {
		set("description", lsn.Description)
	}
	if lsn.CoverEmoji != "" {
		set("cover_emoji", lsn.CoverEmoji)
	}
	if orderIndex != nil {
		set("order_index", *orderIndex)
	}
	if isPublished != nil {
		set("is_published", *isPublished)
	}
	if !lsn.UpdatedAt.IsZero() {
		set("updated_at", lsn.UpdatedAt)
	}
	if len(sets) == 0 {
		return repo.GetLessonByID(ctx, lsn.ID)
	}

	args = append(args, lsn.ID)
	query := fmt.Sprintf(
		`UPDATE lessons SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), lessonColumns)

	var row lessonRow
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lesson.Lesson{}, lesson.ErrLessonNotFound
		}
		return lesson.Lesson{}, errors.Wrap(err, "updating lesson")
	}
	return row.toLesson(), nil
}

func (repo *lessonRepository) DeleteLessonsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting lessons")
}

// modules

func (repo *lessonRepository) CreateModules(ctx context.Context, mods ...lesson.Module) ([]lesson.Module, error) {
	if len(mods) == 0 {
		return []lesson.Module{}, nil
	}

	var b strings.Builder
	b.WriteString(`INSERT INTO modules (lesson_id, type, title, content_json, order_index, created_at, updated_at) VALUES `)
	args := make([]interface{}, 0, len(mods)*7)
	for i, mod := range mods {
		cj, err := json.Marshal(mod.Content)
		if err != nil {
			return nil, errors.Wrap(err, "encoding module content")
		}
		if i > 0 {
			b.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7)
		args = append(args, mod.LessonID, mod.Type, mod.Title, cj, mod.OrderIndex, mod.CreatedAt, mod.UpdatedAt)
	}
	b.WriteString(` RETURNING ` + moduleColumns)

	var rows []moduleRow
	if err := repo.db.SelectContext(ctx, &rows, b.String(), args...); err != nil {
		return nil, errors.Wrap(err, "creating modules")
	}
	return toModules(rows)
}

func (repo *lessonRepository) GetModuleByID(ctx context.Context, id string) (lesson.Module, error) {
	var row moduleRow
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lesson.Module{}, lesson.ErrModuleNotFound
		}
		return lesson.Module{}, errors.Wrap(err, "getting module")
	}
	return row.toModule()
}

func (repo *lessonRepository) QueryModulesByLessonID(ctx context.Context, lessonID string) ([]lesson.Module, error) {
	var rows []moduleRow
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE lesson_id = $1 ORDER BY order_index`
	if err := repo.db.SelectContext(ctx, &rows, query, lessonID); err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}
	return toModules(rows)
}

func (repo *lessonRepository) UpdateModule(ctx context.Context, mod lesson.Module, orderIndex *int) (lesson.Module, error) {
	var sets []string
	var args []interface{}

	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if mod.Title != "" {
		set("title", mod.Title)
	}
	if mod.Content.SlideNumber != 0 || mod.Content.Title != "" {
		cj, err := json.Marshal(mod.Content)
		if err != nil {
			return lesson.Module{}, errors.Wrap(err, "encoding module content")
		}
		set("content_json", cj)
	}
	if orderIndex != nil {
		set("order_index", *orderIndex)
	}
	if !mod.UpdatedAt.IsZero() {
		set("updated_at", mod.UpdatedAt)
	}
	if len(sets) == 0 {
		return repo.GetModuleByID(ctx, mod.ID)
	}

	args = append(args, mod.ID)
	query := fmt.Sprintf(
		`UPDATE modules SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), moduleColumns)

	var row moduleRow
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lesson.Module{}, lesson.ErrModuleNotFound
		}
		return lesson.Module{}, errors.Wrap(err, "updating module")
	}
	return row.toModule()
}

func (repo *lessonRepository) DeleteModulesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM modules WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting modules")
}

func (repo *lessonRepository) DeleteModulesByLessonID(ctx context.Context, lessonID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM modules WHERE lesson_id = $1`, lessonID)
	return errors.Wrap(err, "deleting lesson modules")
}

// uploads

func (repo *lessonRepository) CreateUpload(ctx context.Context, up lesson.Upload) (lesson.Upload, error) {
	query := `
		INSERT INTO ppt_uploads (filename, storage_path, lesson_id, status, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + uploadColumns

	var row uploadRow
	err := repo.db.GetContext(ctx, &row, query,
		up.Filename, up.StoragePath, up.LessonID, up.Status, nullStr(up.UploadedBy), up.CreatedAt, up.UpdatedAt)
	if err != nil {
		return lesson.Upload{}, errors.Wrap(err, "creating upload")
	}
	return row.toUpload(), nil
}

func (repo *lessonRepository) GetUploadByID(ctx context.Context, id string) (lesson.Upload, error) {
	var row uploadRow
	query := `SELECT ` + uploadColumns + ` FROM ppt_uploads WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lesson.Upload{}, lesson.ErrUploadNotFound
		}
		return lesson.Upload{}, errors.Wrap(err, "getting upload")
	}
	return row.toUpload(), nil
}

func (repo *lessonRepository) QueryUploadsByUploader(ctx context.Context, userID string) ([]lesson.Upload, error) {
	var rows []uploadRow
	query := `SELECT ` + uploadColumns + ` FROM ppt_uploads WHERE uploaded_by = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying uploads")
	}
	ups := make([]lesson.Upload, len(rows))
	for i, row := range rows {
		ups[i] = row.toUpload()
	}
	return ups, nil
}

func (repo *lessonRepository) SetUploadStatus(ctx context.Context, id, status string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE ppt_uploads SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return errors.Wrap(err, "setting upload status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return lesson.ErrUploadNotFound
	}
	return nil
}

func toModules(rows []moduleRow) ([]lesson.Module, error) {
	mods := make([]lesson.Module, len(rows))
	for i, row := range rows {
		mod, err := row.toModule()
		if err != nil {
			return nil, err
		}
		mods[i] = mod
	}
	return mods, nil
}

func nullStr(s string) null.String {
	return null.NewString(s, s != "")
}
