package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/merlit/dnswire/internal/dnsmsg"
	"github.com/merlit/dnswire/internal/dnsutils"
	domainmatcher "github.com/merlit/dnswire/internal/domain_matcher"
	"github.com/merlit/dnswire/internal/limiter"
	"github.com/merlit/dnswire/internal/mlog"
	"github.com/merlit/dnswire/internal/netlist"
	"github.com/merlit/dnswire/internal/pool"
	"github.com/merlit/dnswire/internal/pp"
	"github.com/merlit/dnswire/internal/rrdata"
	"github.com/merlit/dnswire/internal/udpcmsg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var cfgPath string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve a static zone over udp and tcp",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			logger := mlog.L()
			b, err := os.ReadFile(cfgPath)
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to read config file")
			}
			cfg, err := parseConfig(b)
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to load config")
			}
			logger.Info().Str("file", cfgPath).Msg("config file loaded")
			run(cmd.Context(), cfg)
		},
	}
	c.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path of the config file")

	genConfigCmd := &cobra.Command{
		Use:   "gen-config",
		Short: "Generate a config template",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			genConfigTemplate(args[0])
		},
	}
	c.AddCommand(genConfigCmd)
	return c
}

const ppHeaderReadTimeout = time.Second * 3

type opt struct {
	logQueries    bool
	udpSize       int
	idleTimeout   int // tcp, seconds
	multiRoutes   bool
	proxyProtocol bool
}

type server struct {
	opt opt

	// not nil
	ctx        context.Context
	cancel     context.CancelCauseFunc
	logger     *zerolog.Logger
	metricsReg *prometheus.Registry
	metrics    *serveMetrics
	codec      *dnsmsg.Codec

	zone      map[zoneKey][]*dnsmsg.Resource
	zoneNames map[string]struct{}

	// nil if disabled
	limiter *limiter.ClientLimiter
	allowed *netlist.List[struct{}]
	blocked *domainmatcher.MixMatcher

	// Replies go out from the addr the query landed on. Set by
	// startUdpServer if multi_routes is on and the platform supports
	// pktinfo cmsgs.
	readOob bool

	fatalErr chan fatalErr
}

type fatalErr struct {
	msg string
	err error
}

func run(ctx context.Context, cfg *Config) {
	logger := mlog.L()
	serverCtx, cancel := context.WithCancelCause(ctx)
	s := &server{
		ctx:        serverCtx,
		cancel:     cancel,
		logger:     logger,
		metricsReg: newMetricsReg(),
		codec:      newCodec(0xFFFF),
		fatalErr:   make(chan fatalErr, 1),
	}
	s.opt.logQueries = cfg.Log.Queries
	s.opt.multiRoutes = cfg.Listen.MultiRoutes
	s.opt.proxyProtocol = cfg.Listen.ProxyProtocol
	setDefaultGZ(&s.opt.udpSize, cfg.Listen.UdpSize, 1232)
	setDefaultGZ(&s.opt.idleTimeout, cfg.Listen.IdleTimeout, 10)

	m, err := newServeMetrics(s.metricsReg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register metrics")
	}
	s.metrics = m

	// build zone
	zone, err := buildZone(cfg.Records)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build zone")
	}
	s.zone = zone
	s.zoneNames = make(map[string]struct{}, len(zone))
	for k := range zone {
		s.zoneNames[k.name] = struct{}{}
	}
	logger.Info().Int("records", len(cfg.Records)).Msg("zone loaded")

	// client acl
	acl, err := buildACL(cfg.Listen.Allow)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build client acl")
	}
	s.allowed = acl
	if acl != nil {
		logger.Info().Int("prefixes", acl.Len()).Msg("client acl loaded")
	}

	// blocklist
	blocked, err := buildBlocklist(cfg.Block)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build blocklist")
	}
	s.blocked = blocked
	if blocked != nil {
		logger.Info().Int("rules", blocked.Len()).Msg("blocklist loaded")
	}

	// client rate limiter
	if cfg.Limiter.Qps > 0 {
		s.limiter = limiter.New(limiter.Opts{
			Qps:   cfg.Limiter.Qps,
			Burst: cfg.Limiter.Burst,
		})
		logger.Info().Float64("qps", cfg.Limiter.Qps).Msg("client rate limiter enabled")
	}

	// start metrics endpoint
	if addr := cfg.Metrics.Addr; len(addr) > 0 {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to start prometheus metrics endpoint server")
		}
		logger.Info().Stringer("addr", l.Addr()).Msg("metrics endpoint server started")
		go func() {
			err := http.Serve(l, promhttp.HandlerFor(s.metricsReg, promhttp.HandlerOpts{}))
			s.fatal("metrics endpoint exited", err)
		}()
	}

	// start servers
	addr := cfg.Listen.Addr
	if len(addr) == 0 {
		addr = "127.0.0.1:53"
	}
	if err := s.startUdpServer(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start udp server")
	}
	if err := s.startTcpServer(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start tcp server")
	}

	runtime.GC()
	debug.FreeOSMemory()
	logger.Info().Msg("server is up and running")

	exitSigChan := make(chan os.Signal, 1)
	signal.Notify(exitSigChan, append([]os.Signal{os.Interrupt}, exitSig...)...)
	select {
	case sig := <-exitSigChan:
		logger.Info().Stringer("signal", sig).Msg("server exiting on signal")
		os.Exit(0)
	case <-serverCtx.Done():
		err := context.Cause(serverCtx)
		logger.Info().AnErr("cause", err).Msg("server exiting, context closed")
		os.Exit(0)
	case fatalErr := <-s.fatalErr:
		logger.Fatal().Err(fatalErr.err).Msg(fatalErr.msg)
	}
}

func (s *server) fatal(msg string, err error) {
	select {
	case s.fatalErr <- fatalErr{msg: msg, err: err}:
	default:
	}
}

func (s *server) startUdpServer(addr string) error {
	lc := net.ListenConfig{}
	pc, err := lc.ListenPacket(s.ctx, "udp", addr)
	if err != nil {
		return err
	}
	c := pc.(*net.UDPConn)
	if s.opt.multiRoutes {
		if udpcmsg.Ok() {
			if _, err := udpcmsg.SetOpt(c); err != nil {
				c.Close()
				return fmt.Errorf("failed to set socket option, %w", err)
			}
			s.readOob = true
		} else {
			s.logger.Warn().Msg("multi_routes is not supported on this platform")
		}
	}
	s.logger.Info().Stringer("addr", c.LocalAddr()).Msg("udp server started")
	go func() {
		err := s.udpLoop(c)
		s.fatal("udp server exited", err)
	}()
	return nil
}

func (s *server) udpLoop(c *net.UDPConn) error {
	b := make([]byte, 2048)
	oob := make([]byte, 512)
	for {
		n, oobN, _, remoteAddr, err := c.ReadMsgUDPAddrPort(b, oob)
		if err != nil {
			if n <= 0 {
				return err
			}
			// Temporary err.
			s.logger.Error().
				Err(err).
				Msg("temporary read err")
			continue
		}

		if !s.accept(remoteAddr.Addr()) {
			continue
		}

		var oobLocalAddr netip.Addr
		if s.readOob {
			ip, err := udpcmsg.ParseLocalAddr(oob[:oobN])
			if err != nil {
				s.logger.Error().
					Stringer("remote", remoteAddr).
					Err(err).
					Msg("failed to get local addr from socket oob")
				continue
			}
			oobLocalAddr = ip
		}

		// Decoded messages do not alias b, the read buffer can be
		// reused while the handler runs.
		q, err := s.codec.Decode(b[:n])
		if err != nil {
			s.metrics.invalidTotal.Inc()
			s.logger.Warn().
				Stringer("remote", remoteAddr).
				Err(err).
				Msg("invalid query msg")
			continue
		}
		pool.Go(func() {
			s.handleUdpReq(q, c, remoteAddr, oobLocalAddr)
		})
	}
}

func (s *server) handleUdpReq(q *dnsmsg.Msg, c *net.UDPConn, remoteAddr netip.AddrPort, oobAddr netip.Addr) {
	start := time.Now()
	resp := s.handleReq(q, "udp", remoteAddr)

	// Determine the client udp size. Try to find edns0.
	clientUdpSize := 0
	for _, rr := range q.Additionals {
		if rr.Type() == dnsmsg.TypeOPT {
			clientUdpSize = int(rr.Class())
		}
	}
	if clientUdpSize < 512 {
		clientUdpSize = 512
	}
	if clientUdpSize > s.opt.udpSize {
		clientUdpSize = s.opt.udpSize
	}

	buf, truncated, err := truncateToFit(s.codec, resp, clientUdpSize)
	if err != nil {
		s.logger.Error().
			Stringer("remote", remoteAddr).
			Err(err).
			Msg("failed to encode response")
		return
	}
	if truncated {
		s.metrics.truncatedTotal.Inc()
	}

	var oob []byte
	if s.readOob && oobAddr.IsValid() {
		oobBuf := pool.GetBuf(udpcmsg.CmsgSize(oobAddr))
		defer pool.ReleaseBuf(oobBuf)
		oob = udpcmsg.CmsgPktInfo(oobBuf.B, oobAddr)
	}
	_, _, err = c.WriteMsgUDPAddrPort(buf.B, oob, remoteAddr)
	pool.ReleaseBuf(buf)
	if err != nil {
		s.logger.Warn().
			Stringer("remote", remoteAddr).
			Err(err).
			Msg("failed to write response")
		return
	}
	s.metrics.responseLatency.Observe(float64(time.Since(start).Milliseconds()))
}

func (s *server) startTcpServer(addr string) error {
	lc := net.ListenConfig{}
	l, err := lc.Listen(s.ctx, "tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info().Stringer("addr", l.Addr()).Msg("tcp server started")
	go func() {
		err := s.tcpLoop(l)
		s.fatal("tcp server exited", err)
	}()
	return nil
}

func (s *server) tcpLoop(l net.Listener) error {
	for {
		c, err := l.Accept()
		if err != nil {
			return err
		}
		if !s.accept(netAddr2NetipAddr(c.RemoteAddr()).Addr()) {
			c.Close()
			continue
		}
		pool.Go(func() {
			defer c.Close()
			s.handleTcpConn(c)
		})
	}
}

func (s *server) handleTcpConn(c net.Conn) {
	remote := netAddr2NetipAddr(c.RemoteAddr())

	// Read the pp2 header from the raw conn. ReadV2 never over reads,
	// the stream behind it stays intact.
	if s.opt.proxyProtocol {
		c.SetReadDeadline(time.Now().Add(ppHeaderReadTimeout))
		hdr, _, err := pp.ReadV2(c)
		if err != nil {
			s.logger.Warn().
				Stringer("remote", c.RemoteAddr()).
				Err(err).
				Msg("failed to read pp2 header")
			return
		}
		if hdr.SourceAddr.IsValid() {
			remote = hdr.SourceAddr
		}
	}

	br := pool.NewBR1K(c)
	defer pool.ReleaseBR1K(br)
	idle := time.Duration(s.opt.idleTimeout) * time.Second
	for {
		c.SetReadDeadline(time.Now().Add(idle))
		q, _, err := dnsutils.ReadMsgTCP(br, s.codec)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrDeadlineExceeded) {
				s.metrics.invalidTotal.Inc()
				s.logger.Warn().
					Stringer("remote", c.RemoteAddr()).
					Err(err).
					Msg("invalid query msg")
			}
			return
		}

		start := time.Now()
		resp := s.handleReq(q, "tcp", remote)
		_, err = dnsutils.WriteMsgTCP(c, s.codec, resp)
		if err != nil {
			s.logger.Warn().
				Stringer("remote", c.RemoteAddr()).
				Err(err).
				Msg("failed to write response")
			return
		}
		s.metrics.responseLatency.Observe(float64(time.Since(start).Milliseconds()))
	}
}

func (s *server) handleReq(q *dnsmsg.Msg, proto string, remote netip.AddrPort) *dnsmsg.Msg {
	s.metrics.queryTotal.WithLabelValues(proto).Inc()
	if s.opt.logQueries && len(q.Questions) > 0 {
		s.logger.Log().
			Object("query", (*qLogObj)(q.Questions[0])).
			Str("proto", proto).
			Stringer("remote", remote).
			Msg("query log")
	}

	if s.limiter != nil && remote.Addr().IsValid() && !s.limiter.Allow(remote.Addr()) {
		s.metrics.refusedTotal.Inc()
		resp := dnsmsg.NewReply(q)
		resp.SetRCode(dnsmsg.RCodeRefused)
		return resp
	}
	return s.answer(q)
}

// accept applies the client acl. Clients with no usable addr, e.g.
// behind a proxy that did not hand over one, bypass the acl.
func (s *server) accept(addr netip.Addr) bool {
	if s.allowed == nil || !addr.IsValid() {
		return true
	}
	_, ok := s.allowed.LookupAddr(addr)
	return ok
}

// answer resolves q against the static zone. It always returns a
// response message.
func (s *server) answer(q *dnsmsg.Msg) *dnsmsg.Msg {
	resp := dnsmsg.NewReply(q)
	resp.SetAuthoritative(true)

	// Echo edns0 if the client sent one.
	clientSupportEDNS0 := false
	for _, rr := range q.Additionals {
		if rr.Type() == dnsmsg.TypeOPT {
			clientSupportEDNS0 = true
		}
	}
	if clientSupportEDNS0 {
		resp.Additionals = append(resp.Additionals, rrdata.NewEDNS0(uint16(s.opt.udpSize)))
	}

	if q.OpCode() != dnsmsg.OpCodeQuery {
		resp.SetRCode(dnsmsg.RCodeNotImplemented)
		return resp
	}
	if len(q.Questions) != 1 {
		resp.SetRCode(dnsmsg.RCodeRefused)
		return resp
	}
	qq := q.Questions[0]
	if qq.Class != dnsmsg.ClassINET {
		resp.SetRCode(dnsmsg.RCodeRefused)
		return resp
	}

	nameKey := qq.Name.ToLower().String()
	if s.blocked != nil && s.blocked.Match(nameKey) {
		s.metrics.blockedTotal.Inc()
		resp.SetRCode(dnsmsg.RCodeRefused)
		return resp
	}
	if typ, ok := s.codec.Registry().TypeCode(qq.Type); ok {
		for _, rr := range s.zone[zoneKey{name: nameKey, typ: typ}] {
			cp, err := s.codec.CloneRecord(rr)
			if err != nil {
				s.logger.Error().Err(err).Msg("failed to clone zone record")
				resp.SetRCode(dnsmsg.RCodeServerFailure)
				return resp
			}
			resp.Answers = append(resp.Answers, cp)
		}
	}
	if len(resp.Answers) == 0 {
		if _, ok := s.zoneNames[nameKey]; !ok {
			resp.SetRCode(dnsmsg.RCodeNameError)
		}
	}
	return resp
}

type qLogObj dnsmsg.Question

func (o *qLogObj) MarshalZerologObject(e *zerolog.Event) {
	q := (*dnsmsg.Question)(o)
	e.Stringer("qname", q.Name)
	e.Str("qtype", q.Type)
	e.Uint16("qclass", uint16(q.Class))
}

// Returns an invalid addr if v is not an udp/tcp addr.
func netAddr2NetipAddr(v net.Addr) netip.AddrPort {
	switch v := v.(type) {
	case *net.UDPAddr:
		return v.AddrPort()
	case *net.TCPAddr:
		return v.AddrPort()
	default:
		return netip.AddrPort{}
	}
}
