package main

import "github.com/abuildsit/borrowlog/cmd"

func main() {
	cmd.Run()
}
