package main

import "github.com/anime-shed/lab-report-inspector-go/internal/cli"

func main() {
	cli.Execute()
}
