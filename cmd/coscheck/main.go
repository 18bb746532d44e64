// Command coscheck is the command-line interface of the regulatory
// cross-reference engine.
package main

import (
	"fmt"
	"os"

	"github.com/coscheck/coscheck/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
