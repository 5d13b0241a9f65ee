package server

import (
	"context"

	"strafenkasse-service/internal/poller"
)

// syncLoop defines the minimal background-sync behavior needed by the server.
type syncLoop interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() poller.Status
}
