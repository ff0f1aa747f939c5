package main

import "github.com/frahmantamala/tradedesk/cmd"

func main() {
	cmd.Execute()
}
