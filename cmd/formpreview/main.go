// Command formpreview renders live document previews from HTML or Markdown
// templates and their field definitions.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
