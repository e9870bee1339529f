package handler

import (
	"context"
	"net/http"

	"learnhub/internal/model"
)

type courseService interface {
	Create(ctx context.Context, actorID string, req model.CourseRequest) (model.Course, error)
	Update(ctx context.Context, actorID string, id string, req model.CourseRequest) (model.Course, error)
	GetPreview(ctx context.Context, id string) (model.Course, error)
	ListPreviews(ctx context.Context) ([]model.Course, error)
	ListAll(ctx context.Context) ([]model.Course, error)
	Content(ctx context.Context, user model.User, id string) ([]model.CourseContent, error)
	AddQuestion(ctx context.Context, user model.User, req model.AddQuestionRequest) (model.Course, error)
	AddAnswer(ctx context.Context, user model.User, req model.AddAnswerRequest) (model.Course, error)
}

type CourseHandler struct {
	service courseService
}

func NewCourseHandler(service courseService) *CourseHandler {
	return &CourseHandler{service: service}
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}

	var payload model.CourseRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	course, err := h.service.Create(r.Context(), actor.ID, payload)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusCreated, course, nil)
	return nil
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}

	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	var payload model.CourseRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	course, err := h.service.Update(r.Context(), actor.ID, id, payload)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusCreated, course, nil)
	return nil
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	course, err := h.service.GetPreview(r.Context(), id)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, course, nil)
	return nil
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) error {
	courses, err := h.service.ListPreviews(r.Context())
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, courses, nil)
	return nil
}

func (h *CourseHandler) ListAll(w http.ResponseWriter, r *http.Request) error {
	courses, err := h.service.ListAll(r.Context())
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, courses, nil)
	return nil
}

func (h *CourseHandler) Content(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	content, err := h.service.Content(r.Context(), user, id)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, content, nil)
	return nil
}

func (h *CourseHandler) AddQuestion(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	var payload model.AddQuestionRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	course, err := h.service.AddQuestion(r.Context(), user, payload)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, course, nil)
	return nil
}

func (h *CourseHandler) AddAnswer(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	var payload model.AddAnswerRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	course, err := h.service.AddAnswer(r.Context(), user, payload)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, course, nil)
	return nil
}
