// Command quakectl inspects the earthquake catalog and computes signal
// features from the terminal.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
