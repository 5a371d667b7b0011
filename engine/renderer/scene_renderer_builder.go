package renderer

import "log/slog"

// SceneRendererBuilderOption is a functional option used to configure a SceneRenderer during construction.
type SceneRendererBuilderOption func(*sceneRenderer)

// WithSceneRendererLogger sets the logger used for upload and draw diagnostics.
//
// Parameters:
//   - logger: the logger to use, nil keeps the default
//
// Returns:
//   - SceneRendererBuilderOption: a function that sets the logger
func WithSceneRendererLogger(logger *slog.Logger) SceneRendererBuilderOption {
	return func(s *sceneRenderer) {
		if logger != nil {
			s.logger = logger
		}
	}
}
