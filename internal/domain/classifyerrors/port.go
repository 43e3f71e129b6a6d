package classifyerrors

import (
	"context"
)

// Repository defines persistence for classify failures
type Repository interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, e *ClassifyFailure) error
}
