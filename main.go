package main

import (
	"os"

	"github.com/ezerfernandes/mdspan/internal/cmd"
)

func main() {
	cmd.Execute(os.Args[1:], os.Stdout, os.Stderr)
}
