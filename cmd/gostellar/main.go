package main

import (
	"github.com/LeJamon/gostellar/internal/cli"
)

func main() {
	cli.Execute()
}
