package content

import (
	"context"
	"io/fs"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"
)

var markdownExtensions = map[string]bool{
	".md":  true,
	".mdx": true,
}

// FileSource reads posts from markdown files in a single directory.
type FileSource struct {
	fsys   fs.FS
	root   string
	logger *zap.Logger
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string, logger *zap.Logger) *FileSource {
	s := NewFileSourceFS(os.DirFS(dir), logger)
	s.root = dir
	return s
}

// NewFileSourceFS creates a FileSource over an arbitrary file system.
func NewFileSourceFS(fsys fs.FS, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{fsys: fsys, root: ".", logger: logger}
}

func (s *FileSource) Name() string { return "files" }

// FetchPosts parses every markdown file in the directory. Unreadable or
// invalid files are reported in the snapshot issues.
func (s *FileSource) FetchPosts(ctx context.Context, preview bool) (*Snapshot, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}

	b := newSnapshotBuilder(preview)
	index := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !markdownExtensions[strings.ToLower(path.Ext(name))] {
			continue
		}

		raw, err := fs.ReadFile(s.fsys, name)
		if err != nil {
			b.add(index, name, nil, malformed("read %s: %v", name, err))
		} else {
			post, err := ParseMarkdownPost(name, raw)
			b.add(index, name, post, err)
		}
		index++
	}

	snap := b.build()
	s.logger.Debug("content files loaded",
		zap.String("dir", s.root),
		zap.Int("posts", len(snap.Posts)),
		zap.Int("issues", len(snap.Issues)),
	)
	return snap, nil
}
