package main

import "github.com/SoarinFerret/TimerWarden/cmd/twctl/arg"

func main() {
	arg.Execute()
}
