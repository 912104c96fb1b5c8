package main

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"i4.energy/across/atmodem/atcmd"
	"i4.energy/across/atmodem/atcodec"
)

// catalogEntry pairs a worked atcmd.Command with the human name operators
// know it by, the way NCAR-agnoio's Commands map pairs a Command with its
// map key for Commands.String()'s table.
type catalogEntry struct {
	name string
	cmd  atcodec.Command
}

var catalog = []catalogEntry{
	{"wake-up", atcmd.AT()},
	{"echo-off", atcmd.EchoOff()},
	{"echo-on", atcmd.EchoOn()},
	{"verbose-errors", atcmd.VerboseErrors()},
	{"sms-text-mode", atcmd.SMSTextMode()},
	{"sim-pin-query", atcmd.CPINQuery{}},
	{"sim-pin-enter", atcmd.CPINEnter{}},
	{"set-functionality", atcmd.CFUN{}},
	{"signal-quality", atcmd.CSQQuery{}},
	{"socket-read", atcmd.USORDQuery{}},
	{"sms-send", atcmd.CMGS{}},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the registered atcmd command catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		var buf bytes.Buffer
		tw := tablewriter.NewWriter(&buf)
		tw.SetAutoWrapText(false)
		tw.SetHeader([]string{"Name", "AT Command", "Max Timeout", "Attempts", "Expects Code", "Retry On Parse Err"})

		for _, e := range catalog {
			d := e.cmd.Defaults()
			tw.Append([]string{
				e.name,
				e.cmd.AtCommand(),
				d.MaxTimeout.String(),
				fmt.Sprintf("%d", d.Attempts),
				fmt.Sprintf("%t", d.ExpectsResponseCode),
				fmt.Sprintf("%t", d.ReattemptOnParseErr),
			})
		}
		tw.Render()
		fmt.Fprint(cmd.OutOrStdout(), buf.String())
		return nil
	},
}
