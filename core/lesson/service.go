package lesson

import (
	"context"
	"fmt"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edulabbr/oratoria/core"
	"github.com/edulabbr/oratoria/core/content"
	"github.com/edulabbr/oratoria/core/deck"
	"github.com/edulabbr/oratoria/core/user"
)

var (
	// errors
	ErrCourseModuleNotFound = errors.New("course module not found")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrModuleNotFound       = errors.New("module not found")
	ErrUploadNotFound       = errors.New("upload not found")
)

type (
	Repository interface {
		CreateCourseModule(ctx context.Context, cm CourseModule) (CourseModule, error)
		QueryCourseModules(ctx context.Context) ([]CourseModule, error)
		UpdateCourseModule(ctx context.Context, cm CourseModule, orderIndex *int) (CourseModule, error)

		CreateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		GetLessonByID(ctx context.Context, id string) (Lesson, error)
		// FilterLessons applies AND operation on available QueryFilter fields.
		FilterLessons(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Lesson, error)
		UpdateLesson(ctx context.Context, lsn Lesson, orderIndex *int, isPublished *bool) (Lesson, error)
		DeleteLessonsByID(ctx context.Context, ids ...string) error

		// CreateModules inserts all modules in one round trip.
		CreateModules(ctx context.Context, mods ...Module) ([]Module, error)
		GetModuleByID(ctx context.Context, id string) (Module, error)
		// QueryModulesByLessonID returns the lesson's modules ordered by order_index.
		QueryModulesByLessonID(ctx context.Context, lessonID string) ([]Module, error)
		UpdateModule(ctx context.Context, mod Module, orderIndex *int) (Module, error)
		DeleteModulesByID(ctx context.Context, ids ...string) error
		DeleteModulesByLessonID(ctx context.Context, lessonID string) error

		CreateUpload(ctx context.Context, up Upload) (Upload, error)
		GetUploadByID(ctx context.Context, id string) (Upload, error)
		QueryUploadsByUploader(ctx context.Context, userID string) ([]Upload, error)
		SetUploadStatus(ctx context.Context, id, status string) error
	}

	// Generator produces exactly one ModuleContent per slide, in slide order.
	// Satisfied by content.Orchestrator.
	Generator interface {
		GenerateBatch(ctx context.Context, slides []deck.Slide) []content.ModuleContent
	}

	Service interface {
		CreateCourseModule(ncm NewCourseModule, createdBy string) (CourseModule, error)
		QueryCourseModules() ([]CourseModule, error)
		UpdateCourseModule(id string, ucm UpdateCourseModule) (CourseModule, error)

		CreateLesson(nl NewLesson, createdBy string) (Lesson, error)
		GetLesson(id string) (Lesson, error)
		QueryLessons(filter *QueryFilter, ordering []core.DBOrdering) ([]Lesson, error)
		UpdateLesson(id string, ul UpdateLesson) (Lesson, error)
		DeleteLessons(ids ...string) error

		GetModule(id string) (Module, error)
		QueryModules(lessonID string) ([]Module, error)
		UpdateModule(id string, um UpdateModule) (Module, error)
		DeleteModules(ids ...string) error

		// Upload stores the deck blob and creates the backing lesson and
		// upload rows (status "processing"). Processing itself is a separate
		// call so it can be rate limited independently.
		Upload(nu NewUpload, data []byte, uploadedBy user.User) (Upload, Lesson, error)
		GetUpload(id string) (Upload, error)
		QueryUploads(uploaderID string) ([]Upload, error)
		// ProcessUpload runs the full pipeline: load blob, parse, generate,
		// replace the lesson's modules, flip the upload status. A parse
		// failure marks the upload "error" and returns the *deck.ParseError.
		ProcessUpload(id string) (Lesson, []Module, error)
	}

	service struct {
		repo    Repository
		store   core.FileStore
		gen     Generator
		mailSvc core.EmailService
		usrSvc  user.Service
		logger  core.Logger
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	store core.FileStore,
	gen Generator,
	mailSvc core.EmailService,
	usrSvc user.Service,
	logger core.Logger,
	conf *core.Config,
) Service {
	return &service{
		repo:    repo,
		store:   store,
		gen:     gen,
		mailSvc: mailSvc,
		usrSvc:  usrSvc,
		logger:  logger,
		conf:    conf,
	}
}

func (svc *service) CreateCourseModule(ncm NewCourseModule, createdBy string) (CourseModule, error) {
	now := time.Now().UTC()
	return svc.repo.CreateCourseModule(context.Background(), CourseModule{
		Title:       ncm.Title,
		Description: ncm.Description,
		OrderIndex:  ncm.OrderIndex,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) QueryCourseModules() ([]CourseModule, error) {
	return svc.repo.QueryCourseModules(context.Background())
}

func (svc *service) UpdateCourseModule(id string, ucm UpdateCourseModule) (CourseModule, error) {
	cm := CourseModule{
		ID:          id,
		Title:       ucm.Title,
		Description: ucm.Description,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateCourseModule(context.Background(), cm, ucm.OrderIndex)
}

func (svc *service) CreateLesson(nl NewLesson, createdBy string) (Lesson, error) {
	now := time.Now().UTC()
	lsn := Lesson{
		CourseModuleID: nl.CourseModuleID,
		Title:          nl.Title,
		Description:    nl.Description,
		CoverEmoji:     nl.CoverEmoji,
		OrderIndex:     nl.OrderIndex,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	lsn.SetPublished(false)
	return svc.repo.CreateLesson(context.Background(), lsn)
}

func (svc *service) GetLesson(id string) (Lesson, error) {
	return svc.repo.GetLessonByID(context.Background(), id)
}

func (svc *service) QueryLessons(filter *QueryFilter, ordering []core.DBOrdering) ([]Lesson, error) {
	if filter == nil {
		filter = &QueryFilter{}
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "order_index", Ascending: true}}
	}
	return svc.repo.FilterLessons(context.Background(), *filter, ordering...)
}

func (svc *service) UpdateLesson(id string, ul UpdateLesson) (Lesson, error) {
	lsn := Lesson{
		ID:             id,
		CourseModuleID: ul.CourseModuleID,
		Title:          ul.Title,
		Description:    ul.Description,
		CoverEmoji:     ul.CoverEmoji,
		UpdatedAt:      time.Now().UTC(),
	}
	return svc.repo.UpdateLesson(context.Background(), lsn, ul.OrderIndex, ul.IsPublished)
}

func (svc *service) DeleteLessons(ids ...string) error {
	return svc.repo.DeleteLessonsByID(context.Background(), ids...)
}

func (svc *service) GetModule(id string) (Module, error) {
	return svc.repo.GetModuleByID(context.Background(), id)
}

func (svc *service) QueryModules(lessonID string) ([]Module, error) {
	return svc.repo.QueryModulesByLessonID(context.Background(), lessonID)
}

func (svc *service) UpdateModule(id string, um UpdateModule) (Module, error) {
	mod := Module{
		ID:        id,
		Title:     um.Title,
		UpdatedAt: time.Now().UTC(),
	}
	if um.Content != nil {
		mod.Content = *um.Content
	}
	return svc.repo.UpdateModule(context.Background(), mod, um.OrderIndex)
}

func (svc *service) DeleteModules(ids ...string) error {
	return svc.repo.DeleteModulesByID(context.Background(), ids...)
}

func (svc *service) Upload(nu NewUpload, data []byte, uploadedBy user.User) (Upload, Lesson, error) {
	ctx := context.Background()

	title := nu.LessonTitle
	if title == "" {
		title = strings.TrimSuffix(nu.Filename, filepath.Ext(nu.Filename))
	}
	lsn, err := svc.CreateLesson(NewLesson{Title: title}, uploadedBy.ID)
	if err != nil {
		return Upload{}, Lesson{}, err
	}

	path := fmt.Sprintf("decks/%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(nu.Filename)))
	if err = svc.store.Save(ctx, path, data); err != nil {
		return Upload{}, Lesson{}, errors.Wrap(err, "storing deck blob")
	}

	now := time.Now().UTC()
	up, err := svc.repo.CreateUpload(ctx, Upload{
		Filename:    nu.Filename,
		StoragePath: path,
		LessonID:    lsn.ID,
		Status:      UploadStatusProcessing,
		UploadedBy:  uploadedBy.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Upload{}, Lesson{}, err
	}
	return up, lsn, nil
}

func (svc *service) GetUpload(id string) (Upload, error) {
	return svc.repo.GetUploadByID(context.Background(), id)
}

func (svc *service) QueryUploads(uploaderID string) ([]Upload, error) {
	return svc.repo.QueryUploadsByUploader(context.Background(), uploaderID)
}

func (svc *service) ProcessUpload(id string) (Lesson, []Module, error) {
	ctx := context.Background()

	up, err := svc.repo.GetUploadByID(ctx, id)
	if err != nil {
		return Lesson{}, nil, err
	}
	lsn, err := svc.repo.GetLessonByID(ctx, up.LessonID)
	if err != nil {
		return Lesson{}, nil, err
	}

	data, err := svc.store.Load(ctx, up.StoragePath)
	if err != nil {
		svc.markError(ctx, up.ID)
		return Lesson{}, nil, errors.Wrap(err, "loading deck blob")
	}

	slides, err := deck.ParseDeck(data)
	if err != nil {
		svc.markError(ctx, up.ID)
		return Lesson{}, nil, err
	}

	batch := svc.gen.GenerateBatch(ctx, slides)

	now := time.Now().UTC()
	mods := make([]Module, len(batch))
	for i, mc := range batch {
		mods[i] = Module{
			LessonID:   lsn.ID,
			Type:       ModuleTypeSummary,
			Title:      mc.Title,
			Content:    mc,
			OrderIndex: mc.SlideNumber - 1,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	// Re-processing an upload replaces whatever a previous run produced.
	if err = svc.repo.DeleteModulesByLessonID(ctx, lsn.ID); err != nil {
		svc.markError(ctx, up.ID)
		return Lesson{}, nil, err
	}
	created, err := svc.repo.CreateModules(ctx, mods...)
	if err != nil {
		svc.markError(ctx, up.ID)
		return Lesson{}, nil, err
	}

	if err = svc.repo.SetUploadStatus(ctx, up.ID, UploadStatusCompleted); err != nil {
		return Lesson{}, nil, err
	}

	if up.UploadedBy != "" {
		go svc.sendProcessedMail(up, lsn, len(created))
	}
	return lsn, created, nil
}

func (svc *service) markError(ctx context.Context, uploadID string) {
	if err := svc.repo.SetUploadStatus(ctx, uploadID, UploadStatusError); err != nil {
		svc.logger.Error("marking upload failed", err)
	}
}

func (svc *service) sendProcessedMail(up Upload, lsn Lesson, count int) {
	usr, err := svc.usrSvc.GetByID(up.UploadedBy)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: fmt.Sprintf("%q is ready", lsn.Title),
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nYour presentation %q has been processed: %d learning modules "+
				"were generated for lesson %q.\n\nReview and publish it at %s/lessons/%s.",
			usr.Name, up.Filename, count, lsn.Title, svc.conf.FrontendBaseURL, lsn.ID,
		),
	})
}
