package viewer

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// ViewerBuilderOption is a functional option used to configure a Viewer during construction.
type ViewerBuilderOption func(*viewer)

// WithModelPaths sets the stock and edit asset paths. Empty values keep the defaults.
//
// Parameters:
//   - stock: the stock variant
//   - edit: the edit variant
//
// Returns:
//   - ViewerBuilderOption: a function that sets the paths
func WithModelPaths(stock, edit string) ViewerBuilderOption {
	return func(v *viewer) {
		v.stockPath = common.Coalesce(stock, v.stockPath)
		v.editPath = common.Coalesce(edit, v.editPath)
	}
}

// WithInitialStock selects the stock variant as the first model. The edit variant is the default.
//
// Parameters:
//   - stock: true to start with the stock variant
//
// Returns:
//   - ViewerBuilderOption: a function that sets the initial variant
func WithInitialStock(stock bool) ViewerBuilderOption {
	return func(v *viewer) {
		v.isStock = stock
	}
}

// WithToggleKeys binds the view and model toggles.
//
// Parameters:
//   - view: the key toggling the camera preset
//   - model: the key toggling the model variant
//
// Returns:
//   - ViewerBuilderOption: a function that sets the bindings
func WithToggleKeys(view, model common.Key) ViewerBuilderOption {
	return func(v *viewer) {
		v.toggleViewKey = view
		v.toggleModelKey = model
	}
}

// WithTitle sets the prefix of the window title.
func WithTitle(title string) ViewerBuilderOption {
	return func(v *viewer) {
		v.title = common.Coalesce(title, v.title)
	}
}

// WithTitleCallback sets the function receiving the title whenever it changes.
func WithTitleCallback(callback func(title string)) ViewerBuilderOption {
	return func(v *viewer) {
		v.onTitle = callback
	}
}

// WithLogger sets the logger. Load failures are reported at error level.
func WithLogger(logger *slog.Logger) ViewerBuilderOption {
	return func(v *viewer) {
		if logger != nil {
			v.logger = logger
		}
	}
}
