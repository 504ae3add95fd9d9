package main

import "github.com/mentally-gamez-soft/ws-blog/cmd/blogctl/commands"

func main() {
	commands.Execute()
}
