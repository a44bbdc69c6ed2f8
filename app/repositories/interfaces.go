package repositories

import "portfolio/app/models"

// Record is a raw stored value, decoded by callers that need to tolerate
// individual corrupt entries.
type Record struct {
	Key   string
	Value []byte
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	Save(post *models.Post) error
	GetBySlug(slug string) (*models.Post, error)
	List(limit, offset int) ([]*models.Post, error)
	Update(post *models.Post) error
	Delete(slug string) error
	Count() (int, error)
	Records() ([]Record, error)
}
