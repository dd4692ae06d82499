// The main package for the yellowpages-leads executable.
package main

import "github.com/JakeFAU/yellowpages-leads/cmd"

func main() {
	cmd.Execute()
}
