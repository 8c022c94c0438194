package interpreter

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of concurrent work: a child of a Parallel statement or one
// iteration of a data-parallel loop.
type Task func() error

// Executor abstracts the scheduling strategy used for parallel statements.
type Executor interface {
	// NewGroup starts a task group. Errors returned by its tasks (and
	// recovered panics) are passed to report instead of aborting siblings.
	NewGroup(report func(error)) TaskGroup
}

// TaskGroup collects tasks started together and joins them.
type TaskGroup interface {
	Go(task Task)
	Wait()
}

func safeInvoke(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task()
}

// GoroutineExecutor runs every task on its own goroutine. A positive limit
// caps how many tasks of one group run at once.
type GoroutineExecutor struct {
	limit int
}

func NewGoroutineExecutor(limit int) *GoroutineExecutor {
	return &GoroutineExecutor{limit: limit}
}

func (e *GoroutineExecutor) NewGroup(report func(error)) TaskGroup {
	g := &goroutineGroup{report: report}
	if e.limit > 0 {
		g.group.SetLimit(e.limit)
	}
	return g
}

type goroutineGroup struct {
	group  errgroup.Group
	report func(error)
}

func (g *goroutineGroup) Go(task Task) {
	g.group.Go(func() error {
		if err := safeInvoke(task); err != nil && g.report != nil {
			g.report(err)
		}
		return nil
	})
}

func (g *goroutineGroup) Wait() {
	_ = g.group.Wait()
}

// SerialExecutor queues tasks and runs them one after another, in submission
// order, when the group is joined. Output of parallel programs becomes
// deterministic under it.
type SerialExecutor struct{}

func NewSerialExecutor() *SerialExecutor {
	return &SerialExecutor{}
}

func (*SerialExecutor) NewGroup(report func(error)) TaskGroup {
	return &serialGroup{report: report}
}

type serialGroup struct {
	mu     sync.Mutex
	queue  []Task
	report func(error)
}

func (g *serialGroup) Go(task Task) {
	g.mu.Lock()
	g.queue = append(g.queue, task)
	g.mu.Unlock()
}

func (g *serialGroup) Wait() {
	for {
		g.mu.Lock()
		if len(g.queue) == 0 {
			g.mu.Unlock()
			return
		}
		task := g.queue[0]
		g.queue = g.queue[1:]
		g.mu.Unlock()
		if err := safeInvoke(task); err != nil && g.report != nil {
			g.report(err)
		}
	}
}
