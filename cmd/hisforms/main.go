// Command hisforms is a terminal client for the HIS portal forms.
package main

import (
	"os"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/cli"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
