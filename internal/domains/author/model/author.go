package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Author is a catalog author. Name is stored in normalized form so
// lookups by name are accent and case insensitive.
type Author struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	BirthDate time.Time `json:"birthDate" db:"birth_date"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type CreateAuthorRequest struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"`
}

func (r CreateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(2, 200).Error("name must be 2-200 characters"),
		),
		validation.Field(&r.BirthDate,
			validation.Required.Error("birthDate is required"),
			validation.Date("2006-01-02").Error("birthDate must be YYYY-MM-DD"),
		),
	)
}

type UpdateAuthorRequest struct {
	Name      *string `json:"name"`
	BirthDate *string `json:"birthDate"`
}

func (r UpdateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.NilOrNotEmpty.Error("name must not be empty"),
			validation.Length(2, 200).Error("name must be 2-200 characters"),
		),
		validation.Field(&r.BirthDate,
			validation.When(r.BirthDate != nil,
				validation.Date("2006-01-02").Error("birthDate must be YYYY-MM-DD"),
			),
		),
	)
}

// AuthorFilter carries pagination and search parameters for listing.
type AuthorFilter struct {
	Search string
	Page   int
	Limit  int
}

// AuthorListResponse is the paginated listing payload.
type AuthorListResponse struct {
	Total   int64    `json:"total"`
	Page    int      `json:"page"`
	Pages   int      `json:"pages"`
	Authors []Author `json:"authors"`
}
