// cmd/worker-manager/tracing.go
package main

import (
	"context"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"job-portal-workers/internal/common/observability"
)

var errJobFailed = errors.New("job failed")

// outcomeClient records whether the handler reported a failure.
type outcomeClient struct {
	worker.JobClient
	failed bool
}

func (c *outcomeClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.failed = true
	return c.JobClient.NewFailJobCommand()
}

func (c *outcomeClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.failed = true
	return c.JobClient.NewThrowErrorCommand()
}

// traced wraps handler in a job span and feeds the otel job counters.
func traced(obs *observability.Observability, taskType string, handler worker.JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		ctx, span := obs.StartJobSpan(context.Background(), taskType, job.Key)
		started := time.Now()

		oc := &outcomeClient{JobClient: client}
		handler(oc, job)

		var err error
		if oc.failed {
			err = errJobFailed
		}
		obs.EndJobSpan(ctx, span, started, err)
	}
}
