package lib

import (
	"context"
	"fmt"

	"github.com/slok/seqr/internal/app/validate"
)

// Validate checks stored sequences without executing them and returns one
// result per check.
//
// Sequence definitions are validated, referenced positions are resolved
// against storage and referenced templates against what the configured
// detector has loaded. An empty name validates every stored sequence.
func (c *Client) Validate(ctx context.Context, sequenceName string) ([]CheckResult, error) {
	svc, err := validate.NewService(validate.ServiceConfig{
		Repository: c.repo,
		Detector:   c.detector,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create validate service: %w", err)
	}

	return svc.Run(ctx, validate.Request{SequenceName: sequenceName})
}
