package main

import "github.com/theirongolddev/goalplan/cmd"

func main() {
	cmd.Execute()
}
