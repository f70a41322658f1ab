package models

import "time"

// Model is a persisted entity with a store-assigned id and timestamps.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Repository is the CRUD surface shared by the sqlite stores.
//
// Get, Update and Delete report an unknown id with an error wrapping shared.ErrNotFound.
// List takes store-specific criteria keys; "limit" is understood by every store.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}

// URLStore is a [Repository] whose entities are unique by source URL and count their reuse.
type URLStore[T Model] interface {
	Repository[T]
	GetByURL(url string) (T, error)
	RecordHit(id string) error
}
