package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/edulabbr/oratoria/core"
	"github.com/edulabbr/oratoria/core/lesson"
)

type lessonRepository struct {
	courseModules *courseModuleTable
	lessons       *lessonTable
	modules       *moduleTable
	uploads       *uploadTable
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) lesson.Repository {
	return &lessonRepository{
		courseModules: db.courseModule,
		lessons:       db.lesson,
		modules:       db.module,
		uploads:       db.upload,
	}
}

// course modules

func (repo *lessonRepository) CreateCourseModule(_ context.Context, cm lesson.CourseModule) (lesson.CourseModule, error) {
	repo.courseModules.Lock()
	defer repo.courseModules.Unlock()

	cm.ID = uuid.NewString()
	repo.courseModules.table[cm.ID] = &cm
	return cm, nil
}

func (repo *lessonRepository) QueryCourseModules(_ context.Context) ([]lesson.CourseModule, error) {
	repo.courseModules.RLock()
	defer repo.courseModules.RUnlock()

	cms := make([]lesson.CourseModule, 0, len(repo.courseModules.table))
	for _, cm := range repo.courseModules.table {
		cms = append(cms, *cm)
	}
	sort.Slice(cms, func(i, j int) bool { return cms[i].OrderIndex < cms[j].OrderIndex })
	return cms, nil
}

func (repo *lessonRepository) UpdateCourseModule(_ context.Context, cm lesson.CourseModule, orderIndex *int) (lesson.CourseModule, error) {
	repo.courseModules.Lock()
	defer repo.courseModules.Unlock()

	orig, ok := repo.courseModules.table[cm.ID]
	if !ok {
		return lesson.CourseModule{}, lesson.ErrCourseModuleNotFound
	}
	if cm.Title != "" {
		orig.Title = cm.Title
	}
	if cm.Description != "" {
		orig.Description = cm.Description
	}
	if orderIndex != nil {
		orig.OrderIndex = *orderIndex
	}
	orig.UpdatedAt = cm.UpdatedAt
	return *orig, nil
}

// lessons

func (repo *lessonRepository) CreateLesson(_ context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	repo.lessons.Lock()
	defer repo.lessons.Unlock()

	lsn.ID = uuid.NewString()
	repo.lessons.table[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *lessonRepository) GetLessonByID(_ context.Context, id string) (lesson.Lesson, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	if lsn, ok := repo.lessons.table[id]; ok {
		return *lsn, nil
	}
	return lesson.Lesson{}, lesson.ErrLessonNotFound
}

func (repo *lessonRepository) FilterLessons(_ context.Context, filter lesson.QueryFilter, _ ...core.DBOrdering) ([]lesson.Lesson, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	lsns := make([]lesson.Lesson, 0, len(repo.lessons.table))
	for _, lsn := range repo.lessons.table {
		if filter.CourseModuleID != "" && lsn.CourseModuleID != filter.CourseModuleID {
			continue
		}
		if filter.IsPublished != nil && lsn.Published() != *filter.IsPublished {
			continue
		}
		if filter.CreatedBy != "" && lsn.CreatedBy != filter.CreatedBy {
			continue
		}
		lsns = append(lsns, *lsn)
	}
	sort.Slice(lsns, func(i, j int) bool {
		if lsns[i].OrderIndex != lsns[j].OrderIndex {
			return lsns[i].OrderIndex < lsns[j].OrderIndex
		}
		if !lsns[i].CreatedAt.Equal(lsns[j].CreatedAt) {
			return lsns[i].CreatedAt.Before(lsns[j].CreatedAt)
		}
		return lsns[i].ID < lsns[j].ID
	})
	return lsns, nil
}

func (repo *lessonRepository) UpdateLesson(_ context.Context, lsn lesson.Lesson, orderIndex *int, isPublished *bool) (lesson.Lesson, error) {
	repo.lessons.Lock()
	defer repo.lessons.Unlock()

	orig, ok := repo.lessons.table[lsn.ID]
	if !ok {
		return lesson.Lesson{}, lesson.ErrLessonNotFound
	}
	if lsn.CourseModuleID != "" {
		orig.CourseModuleID = lsn.CourseModuleID
	}
	if lsn.Title != "" {
		orig.Title = lsn.Title
	}
	if lsn.Description != "" {
		orig.Description = lsn.Description
	}
	if lsn.CoverEmoji != "" {
		orig.CoverEmoji = lsn.CoverEmoji
	}
	if orderIndex != nil {
		orig.OrderIndex = *orderIndex
	}
	if isPublished != nil {
		orig.SetPublished(*isPublished)
	}
	orig.UpdatedAt = lsn.UpdatedAt
	return *orig, nil
}

func (repo *lessonRepository) DeleteLessonsByID(_ context.Context, ids ...string) error {
	repo.lessons.Lock()
	defer repo.lessons.Unlock()
	for _, id := range ids {
		delete(repo.lessons.table, id)
	}
	return nil
}

// modules

func (repo *lessonRepository) CreateModules(_ context.Context, mods ...lesson.Module) ([]lesson.Module, error) {
	repo.modules.Lock()
	defer repo.modules.Unlock()

	created := make([]lesson.Module, 0, len(mods))
	for _, mod := range mods {
		mod.ID = uuid.NewString()
		m := mod
		repo.modules.table[m.ID] = &m
		created = append(created, m)
	}
	return created, nil
}

func (repo *lessonRepository) GetModuleByID(_ context.Context, id string) (lesson.Module, error) {
	repo.modules.RLock()
	defer repo.modules.RUnlock()

	if mod, ok := repo.modules.table[id]; ok {
		return *mod, nil
	}
	return lesson.Module{}, lesson.ErrModuleNotFound
}

func (repo *lessonRepository) QueryModulesByLessonID(_ context.Context, lessonID string) ([]lesson.Module, error) {
	repo.modules.RLock()
	defer repo.modules.RUnlock()

	mods := make([]lesson.Module, 0)
	for _, mod := range repo.modules.table {
		if mod.LessonID == lessonID {
			mods = append(mods, *mod)
		}
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].OrderIndex < mods[j].OrderIndex })
	return mods, nil
}

func (repo *lessonRepository) UpdateModule(_ context.Context, mod lesson.Module, orderIndex *int) (lesson.Module, error) {
	repo.modules.Lock()
	defer repo.modules.Unlock()

	orig, ok := repo.modules.table[mod.ID]
	if !ok {
		return lesson.Module{}, lesson.ErrModuleNotFound
	}
	if mod.Title != "" {
		orig.Title = mod.Title
	}
	if mod.Content.SlideNumber != 0 || mod.Content.Title != "" {
		orig.Content = mod.Content
	}
	if orderIndex != nil {
		orig.OrderIndex = *orderIndex
	}
	orig.UpdatedAt = mod.UpdatedAt
	return *orig, nil
}

func (repo *lessonRepository) DeleteModulesByID(_ context.Context, ids ...string) error {
	repo.modules.Lock()
	defer repo.modules.Unlock()
	for _, id := range ids {
		delete(repo.modules.table, id)
	}
	return nil
}

func (repo *lessonRepository) DeleteModulesByLessonID(_ context.Context, lessonID string) error {
	repo.modules.Lock()
	defer repo.modules.Unlock()
	for id, mod := range repo.modules.table {
		if mod.LessonID == lessonID {
			delete(repo.modules.table, id)
		}
	}
	return nil
}

// uploads

func (repo *lessonRepository) CreateUpload(_ context.Context, up lesson.Upload) (lesson.Upload, error) {
	repo.uploads.Lock()
	defer repo.uploads.Unlock()

	up.ID = uuid.NewString()
	repo.uploads.table[up.ID] = &up
	return up, nil
}

func (repo *lessonRepository) GetUploadByID(_ context.Context, id string) (lesson.Upload, error) {
	repo.uploads.RLock()
	defer repo.uploads.RUnlock()

	if up, ok := repo.uploads.table[id]; ok {
		return *up, nil
	}
	return lesson.Upload{}, lesson.ErrUploadNotFound
}

func (repo *lessonRepository) QueryUploadsByUploader(_ context.Context, userID string) ([]lesson.Upload, error) {
	repo.uploads.RLock()
	defer repo.uploads.RUnlock()

	ups := make([]lesson.Upload, 0)
	for _, up := range repo.uploads.table {
		if up.UploadedBy == userID {
			ups = append(ups, *up)
		}
	}
	sort.Slice(ups, func(i, j int) bool { return ups[i].CreatedAt.After(ups[j].CreatedAt) })
	return ups, nil
}

func (repo *lessonRepository) SetUploadStatus(_ context.Context, id, status string) error {
	repo.uploads.Lock()
	defer repo.uploads.Unlock()

	up, ok := repo.uploads.table[id]
	if !ok {
		return lesson.ErrUploadNotFound
	}
	up.Status = status
	return nil
}
