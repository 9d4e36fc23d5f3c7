// internal/common/camunda/worker.go
package camunda

import (
	"fmt"
	"sync"
	"time"

	"job-portal-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// WorkerSpec describes one job worker to open against the broker.
type WorkerSpec struct {
	TaskType      string
	Handler       worker.JobHandler
	MaxJobsActive int
	Timeout       time.Duration
}

// WorkerPool opens job workers and closes them together on shutdown.
type WorkerPool struct {
	client  zbc.Client
	logger  logger.Logger
	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkerPool(client zbc.Client, log logger.Logger) *WorkerPool {
	return &WorkerPool{
		client:  client,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Open starts polling for spec.TaskType. Opening the same task type twice is an error.
func (p *WorkerPool) Open(spec WorkerSpec) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.workers[spec.TaskType]; exists {
		return fmt.Errorf("worker for %s already open", spec.TaskType)
	}

	step := p.client.NewJobWorker().
		JobType(spec.TaskType).
		Handler(spec.Handler).
		Name(fmt.Sprintf("%s-worker", spec.TaskType))
	if spec.MaxJobsActive > 0 {
		step = step.MaxJobsActive(spec.MaxJobsActive)
	}
	if spec.Timeout > 0 {
		step = step.Timeout(spec.Timeout)
	}
	p.workers[spec.TaskType] = step.Open()

	p.logger.Info("worker started", map[string]interface{}{
		"taskType":      spec.TaskType,
		"maxJobsActive": spec.MaxJobsActive,
		"timeout":       spec.Timeout.String(),
	})
	return nil
}

// TaskTypes lists the task types currently open.
func (p *WorkerPool) TaskTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.workers))
	for t := range p.workers {
		out = append(out, t)
	}
	return out
}

// Close stops every worker and waits for in-flight jobs.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for taskType, w := range p.workers {
		p.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		w.Close()
		w.AwaitClose()
		delete(p.workers, taskType)
	}
}
