package client

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TasksKey is the cache key of the task list.
const TasksKey = "tasks"

// TaskAPI is the subset of the HTTP client the query layer depends on.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, input TaskInput) (*Task, error)
	UpdateTask(ctx context.Context, id string, update TaskUpdate) (*Task, error)
	DeleteTask(ctx context.Context, id string) (*Task, error)
}

type Options struct {
	// StaleTime is how long fetched data is served without refetching.
	StaleTime time.Duration
	// GCTime is how long an entry survives without being read.
	GCTime time.Duration
	// Retry is the number of extra attempts for a failed read.
	Retry      int
	RetryDelay time.Duration
	Now        func() time.Time
}

func DefaultOptions() Options {
	return Options{
		StaleTime:  5 * time.Minute,
		GCTime:     10 * time.Minute,
		Retry:      1,
		RetryDelay: time.Second,
		Now:        time.Now,
	}
}

type entry struct {
	data       []Task
	fetchedAt  time.Time
	lastAccess time.Time
}

// QueryClient caches reads of the task list and invalidates them after
// every successful mutation.
type QueryClient struct {
	api  TaskAPI
	opts Options

	mu          sync.Mutex
	entries     map[string]*entry
	generations map[string]uint64
	group       singleflight.Group
}

func NewQueryClient(api TaskAPI, opts Options) *QueryClient {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Retry < 0 {
		opts.Retry = 0
	}
	return &QueryClient{
		api:         api,
		opts:        opts,
		entries:     make(map[string]*entry),
		generations: make(map[string]uint64),
	}
}

// Tasks returns the task list, fetching it when the cached copy is missing
// or stale. Concurrent callers share one request.
func (q *QueryClient) Tasks(ctx context.Context) ([]Task, error) {
	q.mu.Lock()
	now := q.opts.Now()
	if e, ok := q.entries[TasksKey]; ok && now.Sub(e.fetchedAt) < q.opts.StaleTime {
		e.lastAccess = now
		data := cloneTasks(e.data)
		q.mu.Unlock()
		return data, nil
	}
	gen := q.generations[TasksKey]
	q.mu.Unlock()

	// Reads issued after an invalidation get a new flight key, so they never
	// join a fetch that started before the mutation completed.
	flightKey := fmt.Sprintf("%s#%d", TasksKey, gen)
	v, err, _ := q.group.Do(flightKey, func() (interface{}, error) {
		log.Printf("[cache] MISS %s, fetching", TasksKey)
		// Shared by every waiting caller, so one caller going away must not
		// cancel it. The HTTP client timeout still bounds it.
		tasks, err := q.fetchTasks(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		q.mu.Lock()
		if q.generations[TasksKey] == gen {
			fetchedAt := q.opts.Now()
			q.entries[TasksKey] = &entry{data: tasks, fetchedAt: fetchedAt, lastAccess: fetchedAt}
		}
		q.mu.Unlock()
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneTasks(v.([]Task)), nil
}

func (q *QueryClient) fetchTasks(ctx context.Context) ([]Task, error) {
	var lastErr error
	for attempt := 0; attempt <= q.opts.Retry; attempt++ {
		if attempt > 0 {
			log.Printf("[cache] retrying %s after error: %v", TasksKey, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(q.opts.RetryDelay):
			}
		}

		tasks, err := q.api.ListTasks(ctx)
		if err == nil {
			return tasks, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// CreateTask creates a task and invalidates the list. Mutations are not retried.
func (q *QueryClient) CreateTask(ctx context.Context, input TaskInput) (*Task, error) {
	task, err := q.api.CreateTask(ctx, input)
	if err != nil {
		return nil, err
	}
	q.Invalidate(TasksKey)
	return task, nil
}

func (q *QueryClient) UpdateTask(ctx context.Context, id string, update TaskUpdate) (*Task, error) {
	task, err := q.api.UpdateTask(ctx, id, update)
	if err != nil {
		return nil, err
	}
	q.Invalidate(TasksKey)
	return task, nil
}

func (q *QueryClient) DeleteTask(ctx context.Context, id string) (*Task, error) {
	task, err := q.api.DeleteTask(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Invalidate(TasksKey)
	return task, nil
}

// Invalidate drops the cached value for key so the next read refetches.
func (q *QueryClient) Invalidate(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.generations[key]++
	delete(q.entries, key)
	log.Printf("[cache] invalidated %s", key)
}

// Collect evicts entries that have not been read for longer than GCTime and
// returns how many were removed.
func (q *QueryClient) Collect() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.opts.Now()
	evicted := 0
	for key, e := range q.entries {
		if now.Sub(e.lastAccess) >= q.opts.GCTime {
			delete(q.entries, key)
			evicted++
			log.Printf("[cache] evicted %s", key)
		}
	}
	return evicted
}

// RunCollector calls Collect every interval until ctx is done.
func (q *QueryClient) RunCollector(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.Collect()
		}
	}
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
