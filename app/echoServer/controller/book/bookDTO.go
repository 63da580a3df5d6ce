package book

type AddBookReq struct {
	Title       string `json:"title" validate:"required"`
	Subtitle    string `json:"subtitle"`
	Summary     string `json:"summary"`
	ISBN        string `json:"isbn" validate:"omitempty,max=13"`
	AuthorID    *int64 `json:"author_id"`
	PublisherID *int64 `json:"publisher_id"`
	PublishYear string `json:"publish_year"`
}

// UpdateBookReq is a partial merge: omitted fields keep their stored value.
type UpdateBookReq struct {
	Title       *string `json:"title"`
	Subtitle    *string `json:"subtitle"`
	Summary     *string `json:"summary"`
	ISBN        *string `json:"isbn" validate:"omitempty,max=13"`
	AuthorID    *int64  `json:"author_id"`
	PublisherID *int64  `json:"publisher_id"`
	PublishYear *string `json:"publish_year"`
}
