package main

import "github.com/bz888/koalagpt/cmd"

func main() {
	cmd.Execute()
}
