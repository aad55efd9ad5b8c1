package main

import (
	"github.com/robotalks/cino.go/pkg/cino/env"
	"github.com/robotalks/cino.go/pkg/cli/sh"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
