package main

import "github.com/townboard/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
