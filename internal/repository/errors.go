package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"learnhub/internal/model"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}

	return constraint == "" || pgErr.ConstraintName == constraint
}

func imageColumns(publicID, url *string) *model.Image {
	if url == nil || *url == "" {
		return nil
	}

	img := &model.Image{URL: *url}
	if publicID != nil {
		img.PublicID = *publicID
	}
	return img
}

func imageArgs(img *model.Image) (publicID, url *string) {
	if img == nil {
		return nil, nil
	}

	return &img.PublicID, &img.URL
}
