package main

import "github.com/graph-gophers/typegraph/internal/cli"

func main() {
	cli.Execute()
}
