// Command devora manages devora project data from the command line.
package main

import "github.com/mesh-intelligence/devora/internal/cli"

func main() {
	cli.Execute()
}
