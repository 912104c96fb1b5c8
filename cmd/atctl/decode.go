package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"i4.energy/across/atmodem/atcmd"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <kind> <raw-line>",
	Short: "Decode a raw response or URC line against the atcmd catalog",
	Long: `decode parses a single raw line (as it would appear between the
command echo and the OK/ERROR terminator, or a raw URC line) using one of
the atcmd catalog's response/URC types.

Supported kinds: urc, cpin, csq, usord, cmgs`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, raw := args[0], args[1]

		switch kind {
		case "urc":
			urc, err := atcmd.DecodeURC([]byte(raw))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", urc)
			return nil

		case "cpin":
			var status atcmd.CPINStatus
			if err := status.FromBytes([]byte(raw)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", status)
			return nil

		case "csq":
			var result atcmd.CSQResult
			if err := result.FromBytes([]byte(raw)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", result)
			return nil

		case "usord":
			var result atcmd.USORDResult
			if err := result.FromBytes([]byte(raw)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", result)
			return nil

		case "cmgs":
			var result atcmd.CMGSResult
			if err := result.FromBytes([]byte(raw)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", result)
			return nil

		default:
			return errors.Errorf("decode: unknown kind %q (want one of: urc, cpin, csq, usord, cmgs)", kind)
		}
	},
}
