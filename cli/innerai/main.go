package main

import (
	"fmt"
	"os"

	inneraicmder "github.com/papercomputeco/innerai/cmd/innerai"
)

func main() {
	cmd := inneraicmder.NewInnerAICmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
