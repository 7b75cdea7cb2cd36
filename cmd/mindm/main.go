package main

import (
	"context"
	"os"

	"github.com/meannnn/MindM/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(cli.Execute(context.Background(), version, os.Args[1:]))
}
