package content

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"portfolio/app/models"
	"portfolio/app/repositories"
)

// StoreSource reads posts from the embedded badger store.
type StoreSource struct {
	repo   repositories.PostRepository
	logger *zap.Logger
}

// NewStoreSource creates a StoreSource over repo.
func NewStoreSource(repo repositories.PostRepository, logger *zap.Logger) *StoreSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreSource{repo: repo, logger: logger}
}

func (s *StoreSource) Name() string { return "store" }

// FetchPosts decodes every stored record. A corrupt value only drops that record.
func (s *StoreSource) FetchPosts(ctx context.Context, preview bool) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := s.repo.Records()
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}

	b := newSnapshotBuilder(preview)
	for i, rec := range records {
		var post models.Post
		if err := json.Unmarshal(rec.Value, &post); err != nil {
			b.add(i, rec.Key, &models.Post{Slug: repositories.SlugFromKey(rec.Key)}, malformed("decode: %v", err))
			continue
		}
		b.add(i, rec.Key, &post, nil)
	}

	snap := b.build()
	s.logger.Debug("content store loaded",
		zap.Int("posts", len(snap.Posts)),
		zap.Int("issues", len(snap.Issues)),
	)
	return snap, nil
}
