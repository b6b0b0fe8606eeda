package main

import "github.com/oshokin/scx-installer/cmd/scx-installer/cmd"

func main() {
	cmd.Execute()
}
