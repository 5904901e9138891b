package workflow

import (
	"fmt"
	"sync"
)

// Registry maps action tags to executors.
type Registry struct {
	mu    sync.RWMutex
	steps map[Action]StepExecutor
}

func NewRegistry() *Registry {
	return &Registry{steps: make(map[Action]StepExecutor)}
}

// Register binds exec to action. Actions register once.
func (r *Registry) Register(action Action, exec StepExecutor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.steps[action]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateStep, action)
	}
	r.steps[action] = exec
	return nil
}

// Lookup returns the executor bound to action.
func (r *Registry) Lookup(action Action) (StepExecutor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exec, ok := r.steps[action]
	return exec, ok
}

// Plans maps job types to their fixed step sequences.
type Plans map[string][]StepSpec

// Add validates steps and binds them to each job type. Steps must be
// numbered 1..N in order.
func (p Plans) Add(steps []StepSpec, jobTypes ...string) error {
	if len(steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidPlan)
	}
	for i, s := range steps {
		if s.Number != i+1 {
			return fmt.Errorf("%w: step %d numbered %d", ErrInvalidPlan, i+1, s.Number)
		}
		if s.Action == "" {
			return fmt.Errorf("%w: step %d has no action", ErrInvalidPlan, s.Number)
		}
	}
	for _, jt := range jobTypes {
		p[jt] = steps
	}
	return nil
}

// Lookup returns the plan for jobType.
func (p Plans) Lookup(jobType string) ([]StepSpec, bool) {
	steps, ok := p[jobType]
	return steps, ok
}
