package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - model: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, model model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = model
	}
}

// WithMaxTextureSize limits decoded textures to size pixels on their longest side.
// Zero or negative disables downscaling.
//
// Parameters:
//   - size: the maximum texture width or height
//
// Returns:
//   - LoaderBuilderOption: a function that applies the limit to a loader
func WithMaxTextureSize(size int) LoaderBuilderOption {
	return func(l *loader) {
		l.maxTextureSize = max(size, 0)
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
