package github

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Repository binds a Client to one owner/name pair.
type Repository struct {
	c     *Client
	Owner string
	Name  string
}

// Repository returns a handle for fullName ("owner/repo").
func (c *Client) Repository(fullName string) (*Repository, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("invalid repository %q: want owner/repo", fullName)
	}
	return &Repository{c: c, Owner: owner, Name: name}, nil
}

func (r *Repository) String() string { return r.Owner + "/" + r.Name }

// Info fetches the repository metadata.
func (r *Repository) Info(ctx context.Context) (*Repo, error) {
	return r.c.GetRepo(ctx, r.Owner, r.Name)
}

// ReleaseTags lists every release tag in the repository.
func (r *Repository) ReleaseTags(ctx context.Context) ([]string, error) {
	return r.c.ListReleaseTags(ctx, r.Owner, r.Name)
}

// CreateRelease publishes a release.
func (r *Repository) CreateRelease(ctx context.Context, tag, title, body string) (*Release, error) {
	return r.c.CreateRelease(ctx, r.Owner, r.Name, tag, title, body)
}

// UploadAsset attaches a file to a release.
func (r *Repository) UploadAsset(ctx context.Context, releaseID int64, name string, rd io.Reader, size int64, contentType string) (*Asset, error) {
	return r.c.UploadAsset(ctx, r.Owner, r.Name, releaseID, name, rd, size, contentType)
}

// GetFile reads a file from the default branch.
func (r *Repository) GetFile(ctx context.Context, path string) ([]byte, string, error) {
	return r.c.GetFileContent(ctx, r.Owner, r.Name, path, "")
}

// PutFile writes a file to the default branch.
func (r *Repository) PutFile(ctx context.Context, path string, content []byte, sha, message string) (string, error) {
	return r.c.PutFileContent(ctx, r.Owner, r.Name, path, content, sha, message, "")
}
