// Command homeplan runs the home-care visit scheduling pipeline: decode a
// problem file, solve it in one, three, or benchmark-repeated steps, and
// write the result as a solution file or GEXF graph.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
