package application

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (Application, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	SetLastPaidAt(ctx context.Context, id string, paidAt time.Time) error
}
