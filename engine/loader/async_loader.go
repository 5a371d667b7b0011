package loader

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// LoadResult is the outcome of one asynchronous load request.
type LoadResult struct {
	// Ticket is the value returned by the Request call that produced this result.
	Ticket uint64

	// Path is the requested asset path.
	Path string

	// Model is the loaded model, nil when Err is set.
	Model model.Model

	// Err is the load failure, if any.
	Err error
}

// asyncLoader is the implementation of the AsyncLoader interface.
type asyncLoader struct {
	loader  Loader
	pool    worker.DynamicWorkerPool
	results chan LoadResult
	done    chan struct{}
	logger  *slog.Logger

	workers   int
	queueSize int

	nextTicket atomic.Uint64
	pending    atomic.Int64
	closeOnce  sync.Once
}

// AsyncLoader runs Loader calls on a worker pool so the UI thread never blocks on
// file I/O or parsing. Results arrive on Results() in completion order, which is not
// necessarily request order. In-flight loads cannot be cancelled and have no timeout.
type AsyncLoader interface {
	// Request queues a load of path and returns its ticket. Tickets increase monotonically.
	//
	// Parameters:
	//   - path: the asset path to load
	//
	// Returns:
	//   - uint64: the ticket identifying this request's LoadResult
	Request(path string) uint64

	// Reload evicts path from the model cache and queues a fresh load.
	//
	// Parameters:
	//   - path: the asset path to reload
	//
	// Returns:
	//   - uint64: the ticket identifying this request's LoadResult
	Reload(path string) uint64

	// Evict drops path from the model cache without loading it, so the next Request reads
	// the file again.
	//
	// Parameters:
	//   - path: the asset path to forget
	//
	// Returns:
	//   - bool: true if a cached model was dropped
	Evict(path string) bool

	// Results returns the channel on which completed loads are delivered.
	//
	// Returns:
	//   - <-chan LoadResult: the result channel
	Results() <-chan LoadResult

	// Pending returns the number of requests whose load has not finished yet.
	//
	// Returns:
	//   - int: the number of in-flight requests
	Pending() int

	// Close stops the worker pool. Results of loads still in flight are discarded.
	Close()
}

var _ AsyncLoader = &asyncLoader{}

// NewAsyncLoader creates an AsyncLoader around l and starts its workers.
//
// Parameters:
//   - l: the Loader doing the actual work
//   - options: variadic list of AsyncLoaderBuilderOption functions
//
// Returns:
//   - AsyncLoader: the started async loader
func NewAsyncLoader(l Loader, options ...AsyncLoaderBuilderOption) AsyncLoader {
	a := &asyncLoader{
		loader:    l,
		done:      make(chan struct{}),
		logger:    slog.Default(),
		workers:   max(1, min(runtime.NumCPU()-1, 4)),
		queueSize: 64,
	}
	for _, opt := range options {
		opt(a)
	}
	a.results = make(chan LoadResult, a.queueSize)
	a.pool = worker.NewDynamicWorkerPool(a.workers, a.queueSize, 30*time.Second)
	return a
}

func (a *asyncLoader) Request(path string) uint64 {
	ticket := a.nextTicket.Add(1)
	a.pending.Add(1)
	a.logger.Debug("asset load requested", "path", path, "ticket", ticket)

	a.pool.SubmitTask(worker.Task{
		ID:      int(ticket),
		Payload: path,
		Do: func() (any, error) {
			res := a.load(ticket, path)
			a.pending.Add(-1)
			select {
			case a.results <- res:
			case <-a.done:
			}
			return res.Model, res.Err
		},
	})
	return ticket
}

func (a *asyncLoader) Reload(path string) uint64 {
	a.loader.Evict(path)
	return a.Request(path)
}

func (a *asyncLoader) Evict(path string) bool {
	return a.loader.Evict(path)
}

func (a *asyncLoader) Results() <-chan LoadResult {
	return a.results
}

func (a *asyncLoader) Pending() int {
	return int(a.pending.Load())
}

func (a *asyncLoader) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
		a.pool.Stop()
	})
}

// load runs one Loader call, turning a panic into an error result.
func (a *asyncLoader) load(ticket uint64, path string) (res LoadResult) {
	res = LoadResult{Ticket: ticket, Path: path}
	defer func() {
		if r := recover(); r != nil {
			res.Model = nil
			res.Err = fmt.Errorf("panic while loading %s: %v", path, r)
		}
	}()
	res.Model, res.Err = a.loader.Load(path)
	return res
}
