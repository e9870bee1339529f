package model

type RegistrationRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type ActivationRequest struct {
	ActivationToken string `json:"activation_token" validate:"required"`
	ActivationCode  string `json:"activation_code" validate:"required,len=4,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SocialAuthRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"required"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

type UpdateUserInfoRequest struct {
	Name  string `json:"name" validate:"omitempty,min=2,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

type UpdateAvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

type UpdateRoleRequest struct {
	ID   string `json:"id" validate:"required,uuid"`
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// ProductRequest carries a create or a partial edit. Nil fields are left
// untouched on edit.
type ProductRequest struct {
	ParentTitle   *string            `json:"parent_title" validate:"omitempty,min=1"`
	ImageLink     *string            `json:"image_link"`
	Alt           *string            `json:"alt"`
	Thumbnail     *string            `json:"thumbnail"`
	Price         *float64           `json:"price" validate:"omitempty,gte=0"`
	Family        *string            `json:"family"`
	Years         *string            `json:"years"`
	Frames        *string            `json:"frames"`
	Generation    *string            `json:"generation"`
	BreadcrumbsH1 *string            `json:"breadcrumbs_h1"`
	TypesDiv      *string            `json:"types_div"`
	TextsDiv      *string            `json:"texts_div"`
	ListOfHrefs   []ProductLinkGroup `json:"list_of_hrefs"`
}

func (r ProductRequest) ApplyTo(p *Product) {
	setString(&p.ParentTitle, r.ParentTitle)
	setString(&p.ImageLink, r.ImageLink)
	setString(&p.Alt, r.Alt)
	setString(&p.Family, r.Family)
	setString(&p.Years, r.Years)
	setString(&p.Frames, r.Frames)
	setString(&p.Generation, r.Generation)
	setString(&p.BreadcrumbsH1, r.BreadcrumbsH1)
	setString(&p.TypesDiv, r.TypesDiv)
	setString(&p.TextsDiv, r.TextsDiv)
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.ListOfHrefs != nil {
		p.ListOfHrefs = r.ListOfHrefs
	}
}

// CourseRequest follows the same partial semantics as ProductRequest.
type CourseRequest struct {
	Name           *string         `json:"name" validate:"omitempty,min=1"`
	Description    *string         `json:"description"`
	Price          *float64        `json:"price" validate:"omitempty,gte=0"`
	EstimatedPrice *float64        `json:"estimated_price" validate:"omitempty,gte=0"`
	Thumbnail      *string         `json:"thumbnail"`
	Tags           *string         `json:"tags"`
	Level          *string         `json:"level"`
	DemoURL        *string         `json:"demo_url"`
	Benefits       []Titled        `json:"benefits"`
	Prerequisites  []Titled        `json:"prerequisites"`
	CourseData     []CourseContent `json:"course_data" validate:"omitempty,dive"`
}

func (r CourseRequest) ApplyTo(c *Course) {
	setString(&c.Name, r.Name)
	setString(&c.Description, r.Description)
	setString(&c.Tags, r.Tags)
	setString(&c.Level, r.Level)
	setString(&c.DemoURL, r.DemoURL)
	if r.Price != nil {
		c.Price = *r.Price
	}
	if r.EstimatedPrice != nil {
		c.EstimatedPrice = r.EstimatedPrice
	}
	if r.Benefits != nil {
		c.Benefits = r.Benefits
	}
	if r.Prerequisites != nil {
		c.Prerequisites = r.Prerequisites
	}
	if r.CourseData != nil {
		c.CourseData = r.CourseData
	}
}

type AddQuestionRequest struct {
	Question  string `json:"question" validate:"required"`
	CourseID  string `json:"course_id" validate:"required,uuid"`
	ContentID string `json:"content_id" validate:"required"`
}

type AddAnswerRequest struct {
	Answer     string `json:"answer" validate:"required"`
	CourseID   string `json:"course_id" validate:"required,uuid"`
	ContentID  string `json:"content_id" validate:"required"`
	QuestionID string `json:"question_id" validate:"required"`
}

// CreateOrderRequest must name exactly one of CourseID and ProductID.
type CreateOrderRequest struct {
	CourseID    string `json:"course_id" validate:"omitempty,uuid"`
	ProductID   string `json:"product_id" validate:"omitempty,uuid"`
	PaymentInfo string `json:"payment_info" validate:"max=2000"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
