package main

import (
	"os"

	"github.com/baaaaaaaka/termchat/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
