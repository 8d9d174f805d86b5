package tool

import (
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/merlit/dnswire/internal/dnsmsg"
	"github.com/merlit/dnswire/internal/dnsutils"
	"github.com/merlit/dnswire/internal/mlog"
	"github.com/merlit/dnswire/internal/pool"
	"github.com/merlit/dnswire/internal/rrdata"
)

func newQueryCmd() *cobra.Command {
	var (
		server  string
		useTCP  bool
		timeout time.Duration
		udpSize uint16
	)
	c := &cobra.Command{
		Use:   "query name [type]",
		Short: "Send a query and print the reply, type defaults to A",
		Args:  cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			logger := mlog.L()

			name, err := dnsmsg.ParseName(args[0])
			if err != nil {
				logger.Fatal().Err(err).Msg("invalid domain name")
			}
			qtype := "A"
			if len(args) == 2 {
				qtype = strings.ToUpper(args[1])
			}
			if _, ok := rrdata.Default().TypeCode(qtype); !ok {
				logger.Fatal().Str("type", qtype).Msg("unknown record type")
			}

			m := dnsmsg.NewQuery(name, qtype)
			if udpSize > 0 {
				m.Additionals = append(m.Additionals, rrdata.NewEDNS0(udpSize))
			}

			proto := "udp"
			if useTCP {
				proto = "tcp"
			}
			conn, err := net.DialTimeout(proto, server, timeout)
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to dial server")
			}
			defer conn.Close()
			conn.SetDeadline(time.Now().Add(timeout))

			capacity := dnsmsg.DefaultCapacity
			if int(udpSize) > capacity {
				capacity = int(udpSize)
			}
			if useTCP {
				capacity = 0xFFFF
			}
			codec := newCodec(capacity)

			start := time.Now()
			var reply *dnsmsg.Msg
			var n int
			if useTCP {
				br := pool.NewBR1K(conn)
				defer pool.ReleaseBR1K(br)
				if _, err = dnsutils.WriteMsgTCP(conn, codec, m); err == nil {
					reply, n, err = dnsutils.ReadMsgTCP(br, codec)
				}
			} else {
				if _, err = dnsutils.WriteMsgUDP(conn, codec, m); err == nil {
					reply, n, err = dnsutils.ReadMsgUDP(conn, codec)
				}
			}
			if err != nil {
				logger.Fatal().Err(err).Msg("query failed")
			}
			rtt := time.Since(start)

			if reply.ID != m.ID {
				logger.Warn().
					Uint16("sent", m.ID).
					Uint16("got", reply.ID).
					Msg("reply id does not match the query")
			}
			renderMsg(os.Stdout, codec, reply)
			logger.Info().
				Str("server", server).
				Str("proto", proto).
				Int("size", n).
				Dur("rtt", rtt).
				Msg("done")
		},
	}
	c.Flags().StringVarP(&server, "server", "s", "127.0.0.1:53", "server address")
	c.Flags().BoolVar(&useTCP, "tcp", false, "query over tcp")
	c.Flags().DurationVar(&timeout, "timeout", time.Second*3, "dial and i/o timeout")
	c.Flags().Uint16Var(&udpSize, "udp-size", 1232, "advertised edns0 udp size, 0 disables edns0")
	return c
}
