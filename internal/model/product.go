package model

import "time"

type ProductCard struct {
	Href      string `json:"href"`
	ImageLink string `json:"image_link"`
	Alt       string `json:"alt"`
	HrefH1    string `json:"href_h1"`
}

type ProductLinkGroup struct {
	H1Tag string        `json:"h1_tag"`
	Cards []ProductCard `json:"cards"`
}

type Product struct {
	ID            string             `json:"id"`
	ParentTitle   string             `json:"parent_title"`
	ImageLink     string             `json:"image_link"`
	Alt           string             `json:"alt"`
	Thumbnail     *Image             `json:"thumbnail,omitempty"`
	Price         float64            `json:"price"`
	Family        string             `json:"family"`
	Years         string             `json:"years"`
	Frames        string             `json:"frames"`
	Generation    string             `json:"generation"`
	BreadcrumbsH1 string             `json:"breadcrumbs_h1"`
	TypesDiv      string             `json:"types_div"`
	TextsDiv      string             `json:"texts_div"`
	ListOfHrefs   []ProductLinkGroup `json:"list_of_hrefs"`
	Purchased     int                `json:"purchased"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
