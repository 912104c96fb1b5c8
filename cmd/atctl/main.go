// Command atctl is a small operator CLI for inspecting the codec and the
// atcmd command catalog without a modem attached, grounded in
// marmos91-dittofs's cmd/ Cobra-based CLI layout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "atctl",
	Short:         "Inspect the AT command catalog and decode raw response/URC lines",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(decodeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
