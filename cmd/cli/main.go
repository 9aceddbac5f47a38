package main

import "netdebug/cmd/cli/command"

func main() {
	command.Execute()
}
