package main

import "github.com/skovand/redline/cmd"

func main() {
	cmd.Execute()
}
