package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub/internal/model"
)

const selectCourse = `
	SELECT id, name, description, price, estimated_price, thumbnail_public_id, thumbnail_url,
	       tags, level, demo_url, benefits, prerequisites, ratings, purchased, course_data,
	       created_at, updated_at
	FROM courses`

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func scanCourse(row pgx.Row) (model.Course, error) {
	var (
		c                 model.Course
		thumbID, thumbURL *string
	)

	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Price, &c.EstimatedPrice, &thumbID, &thumbURL,
		&c.Tags, &c.Level, &c.DemoURL, &c.Benefits, &c.Prerequisites, &c.Ratings, &c.Purchased, &c.CourseData,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Course{}, err
	}

	c.Thumbnail = imageColumns(thumbID, thumbURL)
	normalizeCourse(&c)
	return c, nil
}

func normalizeCourse(c *model.Course) {
	if c.Benefits == nil {
		c.Benefits = []model.Titled{}
	}
	if c.Prerequisites == nil {
		c.Prerequisites = []model.Titled{}
	}
	if c.CourseData == nil {
		c.CourseData = []model.CourseContent{}
	}
}

func (r *CourseRepository) Create(ctx context.Context, c model.Course) error {
	normalizeCourse(&c)
	thumbID, thumbURL := imageArgs(c.Thumbnail)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO courses (id, name, description, price, estimated_price, thumbnail_public_id, thumbnail_url,
		                      tags, level, demo_url, benefits, prerequisites, ratings, purchased, course_data,
		                      created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		c.ID, c.Name, c.Description, c.Price, c.EstimatedPrice, thumbID, thumbURL,
		c.Tags, c.Level, c.DemoURL, c.Benefits, c.Prerequisites, c.Ratings, c.Purchased, c.CourseData,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (model.Course, error) {
	c, err := scanCourse(r.pool.QueryRow(ctx, selectCourse+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Course{}, model.ErrCourseNotFound
	}
	if err != nil {
		return model.Course{}, fmt.Errorf("find course by id: %w", err)
	}
	return c, nil
}

func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx, selectCourse+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := make([]model.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *CourseRepository) Update(ctx context.Context, c model.Course) error {
	normalizeCourse(&c)
	thumbID, thumbURL := imageArgs(c.Thumbnail)

	tag, err := r.pool.Exec(ctx,
		`UPDATE courses SET name = $2, description = $3, price = $4, estimated_price = $5,
		        thumbnail_public_id = $6, thumbnail_url = $7, tags = $8, level = $9, demo_url = $10,
		        benefits = $11, prerequisites = $12, course_data = $13, updated_at = $14
		 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Price, c.EstimatedPrice, thumbID, thumbURL, c.Tags, c.Level,
		c.DemoURL, c.Benefits, c.Prerequisites, c.CourseData, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCourseNotFound
	}
	return nil
}

// UpdateContent rewrites only the course_data document, used by the
// question and answer flows.
func (r *CourseRepository) UpdateContent(ctx context.Context, id string, content []model.CourseContent) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses SET course_data = $2, updated_at = $3 WHERE id = $1`,
		id, content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update course content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCourseNotFound
	}
	return nil
}
