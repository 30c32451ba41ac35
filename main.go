package main

import "github.com/kozaktomas/booru-curator/cmd"

func main() {
	cmd.Execute()
}
