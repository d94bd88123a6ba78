package services

import (
	"context"
	"time"
)

// MetricsRecorder counts business events. *aws.MetricsClient implements it.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, name string, dimensions map[string]string) error
}

// recordCount fires and forgets; metrics never fail or slow a request.
func recordCount(m MetricsRecorder, name string) {
	if m == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.RecordCount(ctx, name, map[string]string{"Service": "bakery-service"})
	}()
}
