package cache

import (
	"context"
	"github.com/umalmyha/leads/internal/model"
)

// ClientCache keeps versioned snapshot of all client leads used by export.
// Snapshot returns the current version along with cached clients (nil on miss),
// Store saves clients read under that version and Evict moves to the next version,
// so snapshot read before an insert can never be served after it.
type ClientCache interface {
	Snapshot(context.Context) ([]*model.Client, int64, error)
	Store(context.Context, int64, []*model.Client) error
	Evict(context.Context) error
}

type disabledClientCache struct{}

// Disabled builds ClientCache which never holds anything
func Disabled() ClientCache {
	return disabledClientCache{}
}

func (disabledClientCache) Snapshot(context.Context) ([]*model.Client, int64, error) {
	return nil, 0, nil
}

func (disabledClientCache) Store(context.Context, int64, []*model.Client) error {
	return nil
}

func (disabledClientCache) Evict(context.Context) error {
	return nil
}
