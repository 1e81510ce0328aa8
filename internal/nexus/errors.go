package nexus

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/blackwell-systems/modmirror/internal/httpclient"
)

var (
	ErrUnauthorized = errors.New("nexus: unauthorized (check API key)")
	ErrNotFound     = errors.New("nexus: not found")
	ErrGraphQL      = errors.New("nexus: GraphQL query returned errors")
)

// classify maps well-known statuses onto sentinel errors, keeping the
// original error in the chain.
func classify(err error) error {
	switch httpclient.StatusCode(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
