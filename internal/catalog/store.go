package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blackwell-systems/modmirror/internal/github"
)

// Store loads and saves the persisted catalog.
type Store interface {
	Load(ctx context.Context) (Catalog, error)
	Save(ctx context.Context, c Catalog) error
	String() string
}

// FileStore keeps the catalog in a local file.
type FileStore struct {
	Path   string
	Logger *slog.Logger
}

// Load reads the file. A missing, corrupt or invalid file starts an empty
// catalog with a warning; only an unreadable file is an error.
func (s *FileStore) Load(_ context.Context) (Catalog, error) {
	c, err := Load(s.Path)
	if errors.Is(err, ErrInvalid) {
		return recoverEmpty(s.logger(), s.Path, err)
	}
	return c, err
}

func (s *FileStore) Save(_ context.Context, c Catalog) error {
	return Save(s.Path, c)
}

func (s *FileStore) String() string { return s.Path }

func (s *FileStore) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// FileRepo reads and writes single files in a repository.
type FileRepo interface {
	GetFile(ctx context.Context, path string) ([]byte, string, error)
	PutFile(ctx context.Context, path string, content []byte, sha, message string) (string, error)
}

// RepoStore keeps the catalog as a file in the target repository.
// It centralizes the load → modify → commit cycle: Save commits on top of
// the blob that Load saw.
type RepoStore struct {
	repo    FileRepo
	path    string
	message string
	sha     string
	logger  *slog.Logger
}

// NewRepoStore creates a RepoStore for path in repo.
func NewRepoStore(repo FileRepo, path string, logger *slog.Logger) *RepoStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepoStore{repo: repo, path: path, message: "update " + path, logger: logger}
}

// Load fetches the file. A missing file is an empty catalog and an
// unparsable one is reset with a warning; API failures are errors.
func (s *RepoStore) Load(ctx context.Context) (Catalog, error) {
	data, sha, err := s.repo.GetFile(ctx, s.path)
	if err != nil {
		if github.IsNotFound(err) {
			s.sha = ""
			return Catalog{}, nil
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	s.sha = sha

	c, err := Parse(data)
	if err != nil {
		return recoverEmpty(s.logger, s.String(), err)
	}
	return c, nil
}

// Save commits the catalog.
func (s *RepoStore) Save(ctx context.Context, c Catalog) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	sha, err := s.repo.PutFile(ctx, s.path, data, s.sha, s.message)
	if err != nil {
		return fmt.Errorf("committing catalog: %w", err)
	}
	s.sha = sha
	return nil
}

func (s *RepoStore) String() string { return "repo:" + s.path }

func recoverEmpty(logger *slog.Logger, where string, err error) (Catalog, error) {
	logger.Warn("catalog not usable, starting with an empty one", "path", where, "error", err)
	return Catalog{}, nil
}
