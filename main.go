package main

import "github.com/theirongolddev/abroad/cmd"

func main() {
	cmd.Execute()
}
