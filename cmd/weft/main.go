// Command weft traces directive activation over HTML documents.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/weft/cmd/weft/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
