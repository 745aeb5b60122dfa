package main

import (
	"fmt"
	"os"

	"github.com/seqops/bamlink/cmd/bamlink"
	"github.com/seqops/bamlink/pkg/errors"
)

func main() {
	rootCmd := bamlink.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		// The safety guard gets its own exit status so operators can
		// tell "refused to clobber a real file" apart from ordinary
		// failures.
		if errors.IsCode(err, errors.ErrUnsafeRemove) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
