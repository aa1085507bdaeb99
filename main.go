package main

import "github.com/frctools/vendordep/cmd"

func main() {
	cmd.Execute()
}
