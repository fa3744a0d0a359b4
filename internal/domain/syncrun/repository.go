package syncrun

import "context"

type Repository interface {
	Create(ctx context.Context, item RunLog) (RunLog, error)
	Finish(ctx context.Context, item RunLog) error
}
