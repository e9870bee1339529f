package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoursePreview_StripsPaidMaterial(t *testing.T) {
	course := Course{
		ID:   "c1",
		Name: "Go",
		CourseData: []CourseContent{{
			ID:         "s1",
			Title:      "Intro",
			VideoURL:   "https://cdn/video.mp4",
			Suggestion: "watch twice",
			Links:      []Link{{Title: "repo", URL: "https://example.com"}},
			Questions:  []Question{{ID: "q1", Question: "why?"}},
		}},
	}

	preview := course.Preview()

	assert.Equal(t, "Intro", preview.CourseData[0].Title)
	assert.Empty(t, preview.CourseData[0].VideoURL)
	assert.Empty(t, preview.CourseData[0].Suggestion)
	assert.Nil(t, preview.CourseData[0].Links)
	assert.Nil(t, preview.CourseData[0].Questions)

	// the source course is untouched
	assert.Equal(t, "https://cdn/video.mp4", course.CourseData[0].VideoURL)
	assert.Len(t, course.CourseData[0].Questions, 1)
}

func TestCourseContentLookup(t *testing.T) {
	course := Course{CourseData: []CourseContent{{ID: "s1", Questions: []Question{{ID: "q1"}}}}}

	content, ok := course.Content("s1")
	assert.True(t, ok)

	question, ok := content.Question("q1")
	assert.True(t, ok)
	question.Replies = append(question.Replies, Answer{ID: "a1"})
	assert.Len(t, course.CourseData[0].Questions[0].Replies, 1)

	_, ok = course.Content("missing")
	assert.False(t, ok)
}

func TestProductRequest_ApplyTo(t *testing.T) {
	title := "Golf"
	price := 12.5
	product := Product{ParentTitle: "Polo", Family: "VW", Price: 3}

	ProductRequest{ParentTitle: &title, Price: &price}.ApplyTo(&product)

	assert.Equal(t, "Golf", product.ParentTitle)
	assert.Equal(t, "VW", product.Family)
	assert.Equal(t, 12.5, product.Price)
}

func TestUserOwnership(t *testing.T) {
	u := User{Role: RoleUser, Courses: []string{"c1"}, Products: []string{"p1"}}

	assert.True(t, u.OwnsCourse("c1"))
	assert.False(t, u.OwnsCourse("c2"))
	assert.True(t, u.OwnsProduct("p1"))
	assert.False(t, u.IsAdmin())
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 10, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 0, NewMeta(1, 0, 5).TotalPages)
}
