package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Book is a catalog entry. Title is stored in normalized form; ISBN is
// unique across the catalog and always exactly 13 characters.
type Book struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	ISBN      string    `json:"isbn" db:"isbn"`
	AuthorID  uuid.UUID `json:"authorId" db:"author_id"`
	PageCount int       `json:"pageCount" db:"page_count"`
	CoverURL  *string   `json:"coverUrl" db:"cover_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type CreateBookRequest struct {
	Title     string `json:"title"`
	ISBN      string `json:"isbn"`
	AuthorID  string `json:"authorId"`
	PageCount int    `json:"pageCount"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
		),
		validation.Field(&r.ISBN,
			validation.Required.Error("isbn is required"),
			validation.Length(13, 13).Error("isbn must be exactly 13 characters"),
		),
		validation.Field(&r.AuthorID,
			validation.Required.Error("authorId is required"),
		),
		validation.Field(&r.PageCount,
			validation.Required.Error("pageCount is required"),
			validation.Min(1).Error("pageCount must be at least 1"),
		),
	)
}

type UpdateBookRequest struct {
	Title     *string `json:"title"`
	AuthorID  *string `json:"authorId"`
	PageCount *int    `json:"pageCount"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.NilOrNotEmpty.Error("title must not be empty"),
		),
		validation.Field(&r.PageCount,
			validation.When(r.PageCount != nil,
				validation.Min(1).Error("pageCount must be at least 1"),
			),
		),
	)
}

// BookFilter carries pagination and search parameters for listing.
type BookFilter struct {
	Search   string
	AuthorID *uuid.UUID
	Page     int
	Limit    int
}

// BookListResponse is the paginated listing payload.
type BookListResponse struct {
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
	Books []Book `json:"books"`
}
