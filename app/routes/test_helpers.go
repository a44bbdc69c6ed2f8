package routes

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"portfolio/app/content"
	"portfolio/app/middleware"
	"portfolio/app/models"
	"portfolio/app/repositories"
	"portfolio/app/services"
	"portfolio/app/views"
)

const testPreviewSecret = "let-me-in"

func setupTestDB(t *testing.T) *badger.DB {
	db, err := repositories.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestData(t *testing.T, db *badger.DB) {
	repo := repositories.NewBadgerPostRepository(db)
	posts := []*models.Post{
		{
			Slug:        "javascript-basics",
			Title:       "JavaScript Basics",
			PublishedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			Excerpt:     "Variables, functions and closures",
			Content:     "Closures capture variables.",
			HTML:        "<p>Closures capture variables.</p>",
		},
		{
			Slug:        "react-tips",
			Title:       "React Tips",
			PublishedAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			Content:     "Use memo sparingly.",
			HTML:        "<p>Use memo sparingly.</p>",
		},
		{
			Slug:        "next-post",
			Title:       "Next Post",
			PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Draft:       true,
		},
	}
	for _, p := range posts {
		require.NoError(t, repo.Create(p))
	}
}

func setupTestDeps(t *testing.T, db *badger.DB) Deps {
	hash, err := bcrypt.GenerateFromPassword([]byte(testPreviewSecret), bcrypt.MinCost)
	require.NoError(t, err)

	source := content.NewStoreSource(repositories.NewBadgerPostRepository(db), nil)
	return Deps{
		Posts:     services.NewPostService(source, nil, []string{"react-tips"}),
		Preview:   middleware.NewPreview(string(hash), false),
		Templates: views.MustLoad(),
		Site: views.Site{
			Name:        "Jane Doe",
			Description: "Full stack developer",
			URL:         "https://jane.dev",
		},
	}
}

func setupTestRouter(t *testing.T) *mux.Router {
	db := setupTestDB(t)
	setupTestData(t, db)
	return SetupRoutes(setupTestDeps(t, db))
}
