// Herbid is a CLI that trains a herbarium species classifier and
// produces competition submission files.
package main

import "github.com/gnames/herbid/cmd"

func main() {
	cmd.Execute()
}
