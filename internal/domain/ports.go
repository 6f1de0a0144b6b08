package domain

import "context"

// Store is the remote data store. Rows come back raw and are normalized by the caller.
type Store interface {
	FetchProperties(ctx context.Context) ([]RawRecord, error)
	FetchVisits(ctx context.Context) ([]RawRecord, error)
	FetchPublications(ctx context.Context, limit int) ([]RawRecord, error)
	FetchPipelineStages(ctx context.Context) (map[string]Stage, error)
	UpdatePipelineStatus(ctx context.Context, id string, stage Stage) error
	FetchGroupNames(ctx context.Context) (map[string]string, error)
	// FetchImages returns photo rows ordered by publication then position.
	FetchImages(ctx context.Context) ([]RawRecord, error)
}

type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (User, error)
}

// Geocoder resolves a free-text address. ok is false when the provider has no match.
type Geocoder interface {
	Lookup(ctx context.Context, query string) (c Coordinates, ok bool, err error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
