// Command helics-fmi runs one or more FMUs (or a JSON/TOML/XML config file
// describing several of them) as co-simulation federates on the bus (§4.7).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "helics-fmi:", err)
		os.Exit(exitCodeFor(err))
	}
}
