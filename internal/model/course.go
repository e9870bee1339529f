package model

import "time"

type Titled struct {
	Title string `json:"title"`
}

type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CourseUser is the denormalized author of a question or answer.
type CourseUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Answer struct {
	ID        string     `json:"id"`
	User      CourseUser `json:"user"`
	Answer    string     `json:"answer"`
	CreatedAt time.Time  `json:"created_at"`
}

type Question struct {
	ID        string     `json:"id"`
	User      CourseUser `json:"user"`
	Question  string     `json:"question"`
	Replies   []Answer   `json:"replies"`
	CreatedAt time.Time  `json:"created_at"`
}

type CourseContent struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	VideoURL     string     `json:"video_url,omitempty"`
	VideoSection string     `json:"video_section"`
	VideoLength  int        `json:"video_length"`
	VideoPlayer  string     `json:"video_player"`
	Links        []Link     `json:"links,omitempty"`
	Suggestion   string     `json:"suggestion,omitempty"`
	Questions    []Question `json:"questions,omitempty"`
}

type Course struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          float64         `json:"price"`
	EstimatedPrice *float64        `json:"estimated_price,omitempty"`
	Thumbnail      *Image          `json:"thumbnail,omitempty"`
	Tags           string          `json:"tags"`
	Level          string          `json:"level"`
	DemoURL        string          `json:"demo_url"`
	Benefits       []Titled        `json:"benefits"`
	Prerequisites  []Titled        `json:"prerequisites"`
	Ratings        float64         `json:"ratings"`
	Purchased      int             `json:"purchased"`
	CourseData     []CourseContent `json:"course_data"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Preview returns a copy safe for anonymous readers: paid material and
// discussion are stripped from every content item.
func (c Course) Preview() Course {
	preview := c
	preview.CourseData = make([]CourseContent, len(c.CourseData))
	for i, content := range c.CourseData {
		content.VideoURL = ""
		content.Suggestion = ""
		content.Links = nil
		content.Questions = nil
		preview.CourseData[i] = content
	}

	return preview
}

// Content returns a pointer into CourseData so callers can mutate it in place.
func (c *Course) Content(id string) (*CourseContent, bool) {
	for i := range c.CourseData {
		if c.CourseData[i].ID == id {
			return &c.CourseData[i], true
		}
	}

	return nil, false
}

func (cc *CourseContent) Question(id string) (*Question, bool) {
	for i := range cc.Questions {
		if cc.Questions[i].ID == id {
			return &cc.Questions[i], true
		}
	}

	return nil, false
}
