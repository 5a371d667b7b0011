// Command rx7viewer shows the RX-7 models in a window. Drag with the left mouse button to
// spin the model, V switches between the front and top views and M switches between the
// stock and edited car.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
