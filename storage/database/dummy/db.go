// Package dummydb provides in-memory repository implementations for tests.
package dummydb

import (
	"sync"

	"github.com/edulabbr/oratoria/core/lesson"
	"github.com/edulabbr/oratoria/core/progress"
	"github.com/edulabbr/oratoria/core/user"
)

type (
	DB struct {
		user         *userTable
		courseModule *courseModuleTable
		lesson       *lessonTable
		module       *moduleTable
		upload       *uploadTable
		score        *scoreTable
		rateLimit    *rateLimitTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseModuleTable struct {
		sync.RWMutex
		table map[string]*lesson.CourseModule
	}

	lessonTable struct {
		sync.RWMutex
		table map[string]*lesson.Lesson
	}

	moduleTable struct {
		sync.RWMutex
		table map[string]*lesson.Module
	}

	uploadTable struct {
		sync.RWMutex
		table map[string]*lesson.Upload
	}

	scoreTable struct {
		sync.RWMutex
		table map[string]*progress.Score
	}

	rateLimitTable struct {
		sync.Mutex
		table map[rateLimitKey]*rateLimitRow
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		courseModule: &courseModuleTable{table: make(map[string]*lesson.CourseModule)},
		lesson:       &lessonTable{table: make(map[string]*lesson.Lesson)},
		module:       &moduleTable{table: make(map[string]*lesson.Module)},
		upload:       &uploadTable{table: make(map[string]*lesson.Upload)},
		score:        &scoreTable{table: make(map[string]*progress.Score)},
		rateLimit:    &rateLimitTable{table: make(map[rateLimitKey]*rateLimitRow)},
	}
	return db, nil
}
