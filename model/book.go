package model

type BookStatus string

const (
	BookAvailable BookStatus = "AVAILABLE"
	BookBorrowed  BookStatus = "BORROWED"
)

type BookAuthor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BookPublisher struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Book struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	ISBN        string     `json:"isbn,omitempty"`
	AuthorID    *int64     `json:"author_id,omitempty"`
	PublisherID *int64     `json:"publisher_id,omitempty"`
	PublishYear string     `json:"publish_year,omitempty"`
	Status      BookStatus `json:"status"`
	CreatedBy   *int64     `json:"created_by,omitempty"`
}
