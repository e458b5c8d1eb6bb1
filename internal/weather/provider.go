package weather

import (
	"context"
)

// Source abstracts the remote forecast provider for the single configured
// location.
type Source interface {
	Name() string
	FetchForecast(ctx context.Context) (OneCall, error)
}
