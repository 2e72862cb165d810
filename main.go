package main

import "github.com/gocarrot/xcodeframeworks/cmd"

func main() {
	cmd.Execute()
}
