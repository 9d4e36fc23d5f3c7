// internal/common/camunda/job.go
package camunda

import (
	"context"
	"fmt"

	"job-portal-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// CompleteJob completes job with output serialized as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		log.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	log.Info("job completed successfully", map[string]interface{}{"jobKey": job.Key})
}

// FailJob reports a job failure. With retries left the engine re-activates the job,
// otherwise the error is thrown as a BPMN error so the model can catch it.
func FailJob(ctx context.Context, client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32, log logger.Logger) {
	if retries > job.Retries-1 {
		retries = job.Retries - 1
	}

	log.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	var err error
	if retries > 0 {
		_, err = client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retries).
			ErrorMessage(fmt.Sprintf("[%s] %s", errorCode, errorMessage)).
			Send(ctx)
	} else {
		_, err = client.NewThrowErrorCommand().
			JobKey(job.Key).
			ErrorCode(errorCode).
			ErrorMessage(errorMessage).
			Send(ctx)
	}
	if err != nil {
		log.Error("failed to report job failure", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
}

// ThrowErrorWithVariables throws errorCode as a BPMN error and hands vars to the
// catching scope, so boundary events can read the job's partial result.
func ThrowErrorWithVariables(ctx context.Context, client worker.JobClient, job entities.Job, errorCode, errorMessage string, vars interface{}, log logger.Logger) {
	log.Warn("job threw business error", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	cmd, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		VariablesFromObject(vars)
	if err != nil {
		log.Error("failed to create throw error command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		FailJob(ctx, client, job, errorCode, errorMessage, 0, log)
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		log.Error("failed to send throw error command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
}
