// Command linkctl is an operator CLI for extracting, importing and
// managing links outside the HTTP API.
package main

import "linkshelf/cmd/linkctl/commands"

func main() {
	commands.Execute()
}
