package main

import (
	"os"

	"github.com/danieljhkim/rsmerge/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)
	os.Exit(cli.Run())
}
