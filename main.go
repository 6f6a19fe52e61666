package main

import (
	"context"
	"fmt"
	"os"

	"github.com/broadcastswitch/switcherd/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	root := cmd.NewCommand(version, commit)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
