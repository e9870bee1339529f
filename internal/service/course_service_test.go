package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"learnhub/internal/model"
	"learnhub/pkg/apierror"
)

func sampleCourse() model.Course {
	return model.Course{
		ID:   "c1",
		Name: "Go in practice",
		CourseData: []model.CourseContent{{
			ID:       "s1",
			Title:    "Intro",
			VideoURL: "https://cdn/intro.mp4",
			Questions: []model.Question{{
				ID:       "q1",
				User:     model.CourseUser{ID: "u1", Name: "Ann", Email: "ann@example.com"},
				Question: "Why channels?",
				Replies:  []model.Answer{},
			}},
		}},
	}
}

func newCourseService(env *testEnv) (*CourseService, *MockCourseRepository) {
	repo := new(MockCourseRepository)
	return NewCourseService(repo, env.catalog, env.images, env.mailer, env.bus, false), repo
}

func TestCourseService_Preview(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc, repo := newCourseService(env)

	repo.On("FindByID", mock.Anything, "c1").Return(sampleCourse(), nil).Once()

	for range 2 {
		course, err := svc.GetPreview(ctx, "c1")
		require.NoError(t, err)
		assert.Empty(t, course.CourseData[0].VideoURL)
		assert.Nil(t, course.CourseData[0].Questions)
	}
	repo.AssertNumberOfCalls(t, "FindByID", 1)

	repo.On("List", mock.Anything).Return([]model.Course{sampleCourse()}, nil).Once()
	courses, err := svc.ListPreviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses[0].CourseData[0].VideoURL)
}

func TestCourseService_Content(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc, repo := newCourseService(env)

	_, err := svc.Content(ctx, model.User{ID: "u9"}, "c1")
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.HTTPStatus)

	repo.On("FindByID", mock.Anything, "c1").Return(sampleCourse(), nil)
	content, err := svc.Content(ctx, model.User{ID: "u1", Courses: []string{"c1"}}, "c1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/intro.mp4", content[0].VideoURL)

	_, err = svc.Content(ctx, model.User{ID: "admin", Role: model.RoleAdmin}, "c1")
	require.NoError(t, err)
}

func TestCourseService_QuestionsAndAnswers(t *testing.T) {
	ctx := context.Background()
	owner := model.User{ID: "u2", Name: "Bob", Email: "bob@example.com", Courses: []string{"c1"}}

	t.Run("add question", func(t *testing.T) {
		env := newTestEnv(t)
		svc, repo := newCourseService(env)
		repo.On("FindByID", mock.Anything, "c1").Return(sampleCourse(), nil).Once()
		repo.On("UpdateContent", mock.Anything, "c1", mock.MatchedBy(func(c []model.CourseContent) bool {
			return len(c[0].Questions) == 2 && c[0].Questions[1].User.ID == "u2" && c[0].Questions[1].Question == "How?"
		})).Return(nil).Once()

		_, err := svc.AddQuestion(ctx, owner, model.AddQuestionRequest{Question: "How?", CourseID: "c1", ContentID: "s1"})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("unknown content", func(t *testing.T) {
		env := newTestEnv(t)
		svc, repo := newCourseService(env)
		repo.On("FindByID", mock.Anything, "c1").Return(sampleCourse(), nil).Once()

		_, err := svc.AddQuestion(ctx, owner, model.AddQuestionRequest{Question: "How?", CourseID: "c1", ContentID: "nope"})
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Invalid content id", apiErr.Message)
	})

	t.Run("answer to someone else mails the asker", func(t *testing.T) {
		env := newTestEnv(t)
		svc, repo := newCourseService(env)
		repo.On("FindByID", mock.Anything, "c1").Return(sampleCourse(), nil).Once()
		repo.On("UpdateContent", mock.Anything, "c1", mock.MatchedBy(func(c []model.CourseContent) bool {
			return len(c[0].Questions[0].Replies) == 1 && c[0].Questions[0].Replies[0].Answer == "Because."
		})).Return(nil).Once()

		_, err := svc.AddAnswer(ctx, owner, model.AddAnswerRequest{Answer: "Because.", CourseID: "c1", ContentID: "s1", QuestionID: "q1"})
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", env.mailer.last().To)
	})

	t.Run("answering your own question sends no mail", func(t *testing.T) {
		env := newTestEnv(t)
		svc, repo := newCourseService(env)
		asker := model.User{ID: "u1", Name: "Ann", Email: "ann@example.com", Courses: []string{"c1"}}
		repo.On("FindByID", mock.Anything, "c1").Return(sampleCourse(), nil).Once()
		repo.On("UpdateContent", mock.Anything, "c1", mock.Anything).Return(nil).Once()

		_, err := svc.AddAnswer(ctx, asker, model.AddAnswerRequest{Answer: "Nevermind", CourseID: "c1", ContentID: "s1", QuestionID: "q1"})
		require.NoError(t, err)
		assert.Zero(t, env.mailer.count())
	})

	t.Run("unknown question", func(t *testing.T) {
		env := newTestEnv(t)
		svc, repo := newCourseService(env)
		repo.On("FindByID", mock.Anything, "c1").Return(sampleCourse(), nil).Once()

		_, err := svc.AddAnswer(ctx, owner, model.AddAnswerRequest{Answer: "x", CourseID: "c1", ContentID: "s1", QuestionID: "zz"})
		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Invalid question id", apiErr.Message)
	})
}

func TestCourseService_CreateAssignsContentIDs(t *testing.T) {
	env := newTestEnv(t)
	svc, repo := newCourseService(env)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c model.Course) bool {
		return len(c.CourseData) == 2 && c.CourseData[0].ID != "" && c.CourseData[1].ID != "" && c.CourseData[0].ID != c.CourseData[1].ID
	})).Return(nil).Once()

	name := "Go"
	_, err := svc.Create(context.Background(), "admin", model.CourseRequest{
		Name:       &name,
		CourseData: []model.CourseContent{{Title: "One"}, {Title: "Two"}},
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
