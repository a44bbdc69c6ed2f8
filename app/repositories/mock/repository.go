package mock

import (
	"encoding/json"
	"sort"
	"sync"

	"portfolio/app/models"
	"portfolio/app/repositories"
)

// PostRepository is an in-memory repositories.PostRepository for tests.
type PostRepository struct {
	posts map[string]*models.Post
	raw   map[string][]byte
	mutex sync.RWMutex
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts: make(map[string]*models.Post),
		raw:   make(map[string][]byte),
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[string]*models.Post)
	m.raw = make(map[string][]byte)
}

// PutRaw stores an undecoded value under slug, for exercising corrupt records.
func (m *PostRepository) PutRaw(slug string, value []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.raw[slug] = value
}

func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[post.Slug]; exists {
		return repositories.ErrAlreadyExists
	}
	m.posts[post.Slug] = post
	return nil
}

func (m *PostRepository) Save(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.posts[post.Slug] = post
	return nil
}

func (m *PostRepository) GetBySlug(slug string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[slug]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[post.Slug]; !exists {
		return repositories.ErrNotFound
	}
	m.posts[post.Slug] = post
	return nil
}

func (m *PostRepository) Delete(slug string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[slug]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, slug)
	return nil
}

func (m *PostRepository) List(limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := []*models.Post{}
	for i, slug := range m.sortedSlugs() {
		if i < offset {
			continue
		}
		if limit > 0 && len(posts) >= limit {
			break
		}
		posts = append(posts, m.posts[slug])
	}
	return posts, nil
}

func (m *PostRepository) Count() (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.posts), nil
}

func (m *PostRepository) Records() ([]repositories.Record, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var records []repositories.Record
	for _, slug := range m.sortedSlugs() {
		data, err := json.Marshal(m.posts[slug])
		if err != nil {
			return nil, err
		}
		records = append(records, repositories.Record{Key: repositories.PostKeyPrefix + slug, Value: data})
	}
	rawSlugs := make([]string, 0, len(m.raw))
	for slug := range m.raw {
		rawSlugs = append(rawSlugs, slug)
	}
	sort.Strings(rawSlugs)
	for _, slug := range rawSlugs {
		records = append(records, repositories.Record{Key: repositories.PostKeyPrefix + slug, Value: m.raw[slug]})
	}
	return records, nil
}

func (m *PostRepository) sortedSlugs() []string {
	slugs := make([]string, 0, len(m.posts))
	for slug := range m.posts {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
