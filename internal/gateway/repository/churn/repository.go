package churn

import (
	"context"
	"errors"

	"sdkchurn/internal/gateway/entity"
)

// Store is the read-only contract over the installation dataset.
type Store interface {
	ListSDKs(ctx context.Context) ([]entity.Sdk, error)
	// Aggregate returns retention edges for every requested id and migration
	// edges from every requested id. Migration destinations are not limited to
	// the requested ids.
	Aggregate(ctx context.Context, ids []entity.SdkID) ([]entity.ChurnEdge, error)
	// Apps lists apps that moved from p.From to p.To, or apps using p.From
	// when the pair is a retention pair.
	Apps(ctx context.Context, p entity.Pair) ([]entity.App, error)
}

var ErrNoSDKs = errors.New("at least one SDK ID must be provided")
