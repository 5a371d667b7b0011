package loader

import "log/slog"

// AsyncLoaderBuilderOption is a functional option for configuring an AsyncLoader.
type AsyncLoaderBuilderOption func(*asyncLoader)

// WithWorkers sets the number of load workers. Values below 1 are raised to 1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - AsyncLoaderBuilderOption: option function to apply
func WithWorkers(n int) AsyncLoaderBuilderOption {
	return func(a *asyncLoader) {
		a.workers = max(n, 1)
	}
}

// WithQueueSize sets the capacity of the request queue and of the result channel.
//
// Parameters:
//   - n: the queue capacity
//
// Returns:
//   - AsyncLoaderBuilderOption: option function to apply
func WithQueueSize(n int) AsyncLoaderBuilderOption {
	return func(a *asyncLoader) {
		a.queueSize = max(n, 1)
	}
}

// WithAsyncLogger sets the logger used for request diagnostics.
func WithAsyncLogger(logger *slog.Logger) AsyncLoaderBuilderOption {
	return func(a *asyncLoader) {
		if logger != nil {
			a.logger = logger
		}
	}
}
