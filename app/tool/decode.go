package tool

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/merlit/dnswire/internal/mlog"
)

func newDecodeCmd() *cobra.Command {
	var (
		format  string
		partial bool
		maxSize int
	)
	c := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a dns message and print it, reads stdin if no file is given",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			logger := mlog.L()
			var fp string
			if len(args) == 1 {
				fp = args[0]
			}
			in, err := readPayload(fp)
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to read input")
			}
			wire, err := parseWire(in, format)
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to parse input")
			}

			codec := newCodec(maxSize)
			if partial {
				m, faults, err := codec.DecodePartial(wire)
				if err != nil {
					logger.Fatal().Err(err).Msg("failed to decode msg")
				}
				for _, f := range faults {
					logger.Warn().
						Str("section", f.Section).
						Int("index", f.Index).
						Err(f.Err).
						Msg("skipped record")
				}
				renderMsg(os.Stdout, codec, m)
				return
			}
			m, err := codec.Decode(wire)
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to decode msg")
			}
			renderMsg(os.Stdout, codec, m)
		},
	}
	c.Flags().StringVarP(&format, "format", "f", "hex", "input format [hex|base64|raw]")
	c.Flags().BoolVar(&partial, "partial", false, "keep going over broken records, log them instead")
	c.Flags().IntVar(&maxSize, "max-size", 0xFFFF, "refuse messages larger than this")
	return c
}
