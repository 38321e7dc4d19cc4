package main

import "github.com/uinstall/uinstall/cmd/uinstall/cmd"

func main() {
	cmd.Execute()
}
