package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"learnhub/internal/cache"
	"learnhub/internal/event"
	"learnhub/internal/mail"
	"learnhub/internal/model"
	"learnhub/pkg/apierror"
)

type courseRepository interface {
	Create(ctx context.Context, c model.Course) error
	FindByID(ctx context.Context, id string) (model.Course, error)
	List(ctx context.Context) ([]model.Course, error)
	Update(ctx context.Context, c model.Course) error
	UpdateContent(ctx context.Context, id string, content []model.CourseContent) error
}

type CourseService struct {
	courses           courseRepository
	catalog           *cache.Catalog
	images            imageStore
	mailer            mail.Sender
	bus               event.Bus
	invalidateOnWrite bool
	now               func() time.Time
}

func NewCourseService(courses courseRepository, catalog *cache.Catalog, images imageStore, mailer mail.Sender, bus event.Bus, invalidateOnWrite bool) *CourseService {
	return &CourseService{
		courses:           courses,
		catalog:           catalog,
		images:            images,
		mailer:            mailer,
		bus:               bus,
		invalidateOnWrite: invalidateOnWrite,
		now:               time.Now,
	}
}

func (s *CourseService) Create(ctx context.Context, actorID string, req model.CourseRequest) (model.Course, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return model.Course{}, apierror.BadRequest("name is required")
	}

	now := s.now().UTC()
	course := model.Course{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	req.ApplyTo(&course)
	assignContentIDs(course.CourseData)

	if req.Thumbnail != nil && *req.Thumbnail != "" {
		thumb, err := s.images.Upload(ctx, "courses", *req.Thumbnail, 0)
		if err != nil {
			return model.Course{}, err
		}
		course.Thumbnail = &thumb
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return model.Course{}, err
	}

	s.afterWrite(ctx, course.ID)
	s.bus.Publish(event.New(event.TypeCourseCreated, actorID, course.Preview()))
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, actorID string, id string, req model.CourseRequest) (model.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return model.Course{}, err
	}

	if req.Thumbnail != nil && *req.Thumbnail != "" {
		thumb, err := s.images.Upload(ctx, "courses", *req.Thumbnail, 0)
		if err != nil {
			return model.Course{}, err
		}
		if course.Thumbnail != nil {
			if err := s.images.Destroy(ctx, course.Thumbnail.PublicID); err != nil {
				slog.Warn("old course thumbnail not removed", "course_id", id, "error", err)
			}
		}
		course.Thumbnail = &thumb
	}

	req.ApplyTo(&course)
	assignContentIDs(course.CourseData)
	course.UpdatedAt = s.now().UTC()

	if err := s.courses.Update(ctx, course); err != nil {
		return model.Course{}, err
	}

	s.afterWrite(ctx, course.ID)
	s.bus.Publish(event.New(event.TypeCourseUpdated, actorID, course.Preview()))
	return course, nil
}

// GetPreview is the public single course read, served through the cache.
func (s *CourseService) GetPreview(ctx context.Context, id string) (model.Course, error) {
	return cache.ReadThrough(ctx, s.catalog, cache.CourseKey(id), func(ctx context.Context) (model.Course, error) {
		course, err := s.courses.FindByID(ctx, id)
		if err != nil {
			return model.Course{}, err
		}
		return course.Preview(), nil
	})
}

func (s *CourseService) ListPreviews(ctx context.Context) ([]model.Course, error) {
	return cache.ReadThrough(ctx, s.catalog, cache.AllCoursesKey, func(ctx context.Context) ([]model.Course, error) {
		courses, err := s.courses.List(ctx)
		if err != nil {
			return nil, err
		}
		for i := range courses {
			courses[i] = courses[i].Preview()
		}
		return courses, nil
	})
}

// ListAll is the uncached admin listing with full content.
func (s *CourseService) ListAll(ctx context.Context) ([]model.Course, error) {
	return s.courses.List(ctx)
}

func (s *CourseService) Content(ctx context.Context, user model.User, id string) ([]model.CourseContent, error) {
	if !user.OwnsCourse(id) && !user.IsAdmin() {
		return nil, apierror.Forbidden("You are not eligible to access this course")
	}

	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return course.CourseData, nil
}

func (s *CourseService) AddQuestion(ctx context.Context, user model.User, req model.AddQuestionRequest) (model.Course, error) {
	if !user.OwnsCourse(req.CourseID) && !user.IsAdmin() {
		return model.Course{}, apierror.Forbidden("You are not eligible to access this course")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return model.Course{}, err
	}

	content, ok := course.Content(req.ContentID)
	if !ok {
		return model.Course{}, apierror.BadRequest("Invalid content id")
	}

	content.Questions = append(content.Questions, model.Question{
		ID:        uuid.NewString(),
		User:      courseUser(user),
		Question:  req.Question,
		Replies:   []model.Answer{},
		CreatedAt: s.now().UTC(),
	})

	if err := s.courses.UpdateContent(ctx, course.ID, course.CourseData); err != nil {
		return model.Course{}, err
	}

	s.bus.Publish(event.New(event.TypeQuestionAdded, user.ID, event.QuestionAdded{
		CourseID:     course.ID,
		ContentID:    content.ID,
		ContentTitle: content.Title,
		UserID:       user.ID,
		UserName:     user.Name,
	}))
	return course, nil
}

// AddAnswer appends a reply. When someone other than the asker replies, the
// asker is notified by mail.
func (s *CourseService) AddAnswer(ctx context.Context, user model.User, req model.AddAnswerRequest) (model.Course, error) {
	if !user.OwnsCourse(req.CourseID) && !user.IsAdmin() {
		return model.Course{}, apierror.Forbidden("You are not eligible to access this course")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return model.Course{}, err
	}

	content, ok := course.Content(req.ContentID)
	if !ok {
		return model.Course{}, apierror.BadRequest("Invalid content id")
	}

	question, ok := content.Question(req.QuestionID)
	if !ok {
		return model.Course{}, apierror.BadRequest("Invalid question id")
	}

	question.Replies = append(question.Replies, model.Answer{
		ID:        uuid.NewString(),
		User:      courseUser(user),
		Answer:    req.Answer,
		CreatedAt: s.now().UTC(),
	})
	asker := question.User

	if err := s.courses.UpdateContent(ctx, course.ID, course.CourseData); err != nil {
		return model.Course{}, err
	}

	if asker.ID != user.ID && asker.Email != "" {
		s.mailReply(ctx, asker, content.Title)
	}

	s.bus.Publish(event.New(event.TypeAnswerAdded, user.ID, event.AnswerAdded{
		CourseID:     course.ID,
		ContentID:    content.ID,
		ContentTitle: content.Title,
		QuestionID:   req.QuestionID,
		UserID:       user.ID,
		UserName:     user.Name,
	}))
	return course, nil
}

func (s *CourseService) mailReply(ctx context.Context, asker model.CourseUser, title string) {
	msg, err := mail.ReplyMail(asker.Email, mail.ReplyData{Name: asker.Name, Title: title})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		slog.Error("reply mail failed", "to", asker.Email, "error", err)
	}
}

func (s *CourseService) afterWrite(ctx context.Context, id string) {
	if !s.invalidateOnWrite {
		return
	}

	if err := s.catalog.Invalidate(ctx, cache.CourseKey(id), cache.AllCoursesKey); err != nil {
		slog.Warn("course cache invalidation failed", "course_id", id, "error", err)
	}
}

func assignContentIDs(content []model.CourseContent) {
	for i := range content {
		if content[i].ID == "" {
			content[i].ID = uuid.NewString()
		}
		if content[i].Questions == nil {
			content[i].Questions = []model.Question{}
		}
	}
}

func courseUser(u model.User) model.CourseUser {
	return model.CourseUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
