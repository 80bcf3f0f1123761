// The main package for the seoreporter executable.
package main

import (
	"github.com/JakeFAU/seo-reporter/cmd"
)

func main() {
	cmd.Execute()
}
