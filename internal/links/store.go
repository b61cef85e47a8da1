package links

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"planwrite/internal/config"
)

// ErrIndexNotFound is returned by a Store that holds no index for a property.
var ErrIndexNotFound = errors.New("link index not found")

// Store persists built link indexes.
type Store interface {
	Load(ctx context.Context, property string) (*Index, error)
	Save(ctx context.Context, property string, index *Index) error
}

// NewStore builds the store selected by the links config section.
func NewStore(cfg config.Links) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "file":
		return NewFileStore(cfg.StorageDir), nil
	case "postgres":
		return NewPostgresStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown links backend %q", cfg.Backend)
	}
}
