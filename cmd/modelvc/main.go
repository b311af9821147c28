package main

import (
	"github.com/metaforge/modelvc/cmd/modelvc/cmd"
)

func main() {
	cmd.Execute()
}
