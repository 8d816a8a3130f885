package main

import "github.com/user00265/ctydatapi/internal/cli"

func main() {
	cli.Execute()
}
