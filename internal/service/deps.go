package service

import (
	"context"

	"learnhub/internal/model"
)

// imageStore is satisfied by media.Uploader.
type imageStore interface {
	Upload(ctx context.Context, folder string, source string, width int) (model.Image, error)
	Destroy(ctx context.Context, publicID string) error
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (model.User, error)
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (model.Course, error)
}

type productFinder interface {
	FindByID(ctx context.Context, id string) (model.Product, error)
}
