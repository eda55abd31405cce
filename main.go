package main

import "github.com/gaugeworks/riverdata/cmd"

func main() {
	cmd.Execute()
}
