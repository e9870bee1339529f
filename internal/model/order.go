package model

import "time"

const (
	ItemCourse  = "course"
	ItemProduct = "product"
)

type Order struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CourseID    *string   `json:"course_id,omitempty"`
	ProductID   *string   `json:"product_id,omitempty"`
	PaymentInfo string    `json:"payment_info,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Item reports which catalog entry the order purchases.
func (o Order) Item() (kind string, id string) {
	if o.CourseID != nil {
		return ItemCourse, *o.CourseID
	}
	if o.ProductID != nil {
		return ItemProduct, *o.ProductID
	}

	return "", ""
}
