// Command river is the window-management core's entry point: a small
// cobra command tree over the server package, following the same
// flags-over-viper-over-defaults layering the rest of the retrieved
// Wayland-adjacent tooling uses for its own CLIs.
package main

import (
	"fmt"
	"os"

	"riverwm.dev/river/internal/river/rlog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var log = rlog.For("main")
