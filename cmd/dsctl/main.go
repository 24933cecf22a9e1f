package main

import "github.com/tansive/datasource-store/internal/cli"

func main() {
	cli.Execute()
}
