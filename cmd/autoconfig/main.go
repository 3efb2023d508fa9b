// Command autoconfig orders and selects auto-configurations from a metadata
// file, or serves the ordering resolver over gRPC and HTTP.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
