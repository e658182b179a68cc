package router

import "context"

// Router classifies a file and runs the matching extraction strategy.
type Router interface {
	Route(ctx context.Context, path string) (Result, error)
}
