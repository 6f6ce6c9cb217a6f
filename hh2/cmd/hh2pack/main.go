// Command hh2pack builds a hh2 asset archive from a directory tree and can
// inspect an already-built one. See cmd/hh2pack/cmd for the command tree.
package main

import (
	"os"

	"github.com/flga/hh2/hh2/cmd/hh2pack/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
