// Command docviewer converts documents into per-page images and text.
package main

import (
	"os"

	"github.com/custodia-labs/documentviewer/internal/adapters/driving/cli"
)

func main() {
	cli.SetBootstrap(build)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
