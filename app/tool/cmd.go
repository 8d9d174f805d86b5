// Package tool holds the dnswire subcommands: offline decoding, live
// querying and a small static responder. They are thin hosts around the
// codec, everything wire level lives in internal/dnsmsg.
package tool

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/merlit/dnswire/app"
	"github.com/merlit/dnswire/internal/dnsmsg"
	"github.com/merlit/dnswire/internal/mlog"
	"github.com/merlit/dnswire/internal/rrdata"
)

func init() {
	app.RootCmd().AddCommand(
		newDecodeCmd(),
		newQueryCmd(),
		newServeCmd(),
		newTypesCmd(),
	)
}

func newCodec(capacity int) *dnsmsg.Codec {
	return dnsmsg.NewCodec(rrdata.Default(), capacity)
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered record types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			logger := mlog.L()
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tCLASS")
			for _, id := range rrdata.Default().Idents() {
				class := classText(id.Class)
				if id.Class == 0 {
					class = "any"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", id.Name, id.Type, class)
			}
			if err := w.Flush(); err != nil {
				logger.Fatal().Err(err).Msg("failed to write type table")
			}
		},
	}
}
