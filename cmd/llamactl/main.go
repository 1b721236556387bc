package main

import (
	"os"

	"llamad/internal/cli"
)

func main() { os.Exit(cli.Main()) }
