package handler

import (
	"context"
	"net/http"
	"strconv"

	"learnhub/internal/model"
)

type productService interface {
	Create(ctx context.Context, actorID string, req model.ProductRequest) (model.Product, error)
	Update(ctx context.Context, actorID string, id string, req model.ProductRequest) (model.Product, error)
	Get(ctx context.Context, id string) (model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	GetOwned(ctx context.Context, user model.User, id string) (model.Product, error)
	Search(ctx context.Context, query string, page int, limit int) ([]model.Product, *model.Meta, error)
}

type ProductHandler struct {
	service productService
}

func NewProductHandler(service productService) *ProductHandler {
	return &ProductHandler{service: service}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}

	var payload model.ProductRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	product, err := h.service.Create(r.Context(), actor.ID, payload)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusCreated, product, nil)
	return nil
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}

	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	var payload model.ProductRequest
	if err := bind(r, &payload); err != nil {
		return err
	}

	product, err := h.service.Update(r.Context(), actor.ID, id, payload)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusCreated, product, nil)
	return nil
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, product, nil)
	return nil
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) error {
	products, err := h.service.List(r.Context())
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, products, nil)
	return nil
}

func (h *ProductHandler) GetOwned(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	product, err := h.service.GetOwned(r.Context(), user, id)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, product, nil)
	return nil
}

// Search reads q, page and limit from the query string.
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	products, meta, err := h.service.Search(r.Context(), query.Get("q"), page, limit)
	if err != nil {
		return err
	}

	writeSuccess(w, http.StatusOK, products, meta)
	return nil
}
