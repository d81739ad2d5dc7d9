// Package main provides the XiaoNet CLI.
package main

import (
	"fmt"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("XiaoNet %s\n", version)
		return
	}

	fmt.Println("XiaoNet - Computation-Graph Engine for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("")
	fmt.Println("See examples/twolayer for an end-to-end training run.")
}
