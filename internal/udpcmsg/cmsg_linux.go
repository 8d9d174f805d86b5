//go:build linux

package udpcmsg

import (
	"fmt"
	"net"
	"net/netip"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Ok reports whether pktinfo control msgs are supported on this platform.
func Ok() bool {
	return true
}

// SetOpt enables receiving the local destination addr in oob data.
// inet6 is true if c is an inet6 socket and IPV6_RECVPKTINFO was set.
// Otherwise c is an inet4 socket and IP_PKTINFO was set.
func SetOpt(c *net.UDPConn) (inet6 bool, err error) {
	sc, err := c.SyscallConn()
	if err != nil {
		return false, err
	}

	var innerErr error
	err = sc.Control(func(fd uintptr) {
		domain, err := unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_DOMAIN)
		if err != nil {
			innerErr = fmt.Errorf("failed to get SO_DOMAIN, %w", err)
			return
		}

		switch domain {
		case unix.AF_INET:
			inet6 = false
			err := unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_PKTINFO, 1)
			if err != nil {
				innerErr = fmt.Errorf("failed to set IP_PKTINFO, %w", err)
				return
			}
		case unix.AF_INET6:
			inet6 = true
			err := unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_RECVPKTINFO, 1)
			if err != nil {
				innerErr = fmt.Errorf("failed to set IPV6_RECVPKTINFO, %w", err)
				return
			}
		default:
			innerErr = fmt.Errorf("socket domain %d is not supported", domain)
			return
		}
	})
	if err != nil {
		return false, err
	}
	return inet6, innerErr
}

// ParseLocalAddr pulls the local destination addr out of oob control
// msgs. May return an invalid addr and nil error if oob carries no
// pktinfo msg.
func ParseLocalAddr(oob []byte) (netip.Addr, error) {
	remain := oob
	for len(remain) > 0 {
		hdr, data, rest, err := unix.ParseOneSocketControlMessage(remain)
		if err != nil {
			return netip.Addr{}, fmt.Errorf("failed to parse cmsg, %w", err)
		}
		remain = rest

		if hdr.Level == unix.IPPROTO_IP && hdr.Type == unix.IP_PKTINFO { // inet
			if len(data) < unix.SizeofInet4Pktinfo {
				return netip.Addr{}, fmt.Errorf("short inet4 pktinfo, %d bytes", len(data))
			}
			m := (*unix.Inet4Pktinfo)(unsafe.Pointer(&data[0]))
			return netip.AddrFrom4(m.Addr), nil
		}

		if hdr.Level == unix.IPPROTO_IPV6 && hdr.Type == unix.IPV6_PKTINFO { // inet6
			if len(data) < unix.SizeofInet6Pktinfo {
				return netip.Addr{}, fmt.Errorf("short inet6 pktinfo, %d bytes", len(data))
			}
			m := (*unix.Inet6Pktinfo)(unsafe.Pointer(&data[0]))
			return netip.AddrFrom16(m.Addr), nil
		}
	}
	return netip.Addr{}, nil
}

// CmsgSize returns the oob space CmsgPktInfo needs for addr. If addr
// is invalid, returns 0.
func CmsgSize(addr netip.Addr) int {
	if !addr.IsValid() {
		return 0
	}
	addr = addr.Unmap()
	if addr.Is4() {
		return unix.CmsgSpace(unix.SizeofInet4Pktinfo)
	}
	return unix.CmsgSpace(unix.SizeofInet6Pktinfo)
}

// CmsgPktInfo packs addr into a pktinfo control msg so a reply leaves
// from the addr the query landed on. b is reused when it is big
// enough, otherwise a new slice is allocated. Invalid addr returns nil.
func CmsgPktInfo(b []byte, addr netip.Addr) []byte {
	if !addr.IsValid() {
		return nil
	}
	addr = addr.Unmap()
	if addr.Is4() {
		return cmsgInet4Pktinfo(b, addr)
	}
	return cmsgInet6Pktinfo(b, addr)
}

func cmsgInet6Pktinfo(b []byte, addr netip.Addr) []byte {
	if s := unix.CmsgSpace(unix.SizeofInet6Pktinfo); len(b) < s {
		b = make([]byte, s)
	} else {
		b = b[:s]
	}

	h := (*unix.Cmsghdr)(unsafe.Pointer(&b[0]))
	h.SetLen(unix.CmsgLen(unix.SizeofInet6Pktinfo))
	h.Level = unix.IPPROTO_IPV6
	h.Type = unix.IPV6_PKTINFO
	data := b[unix.CmsgLen(0):]
	m := (*unix.Inet6Pktinfo)(unsafe.Pointer(&data[0]))
	m.Addr = addr.As16()
	m.Ifindex = 0
	return b
}

func cmsgInet4Pktinfo(b []byte, addr netip.Addr) []byte {
	if s := unix.CmsgSpace(unix.SizeofInet4Pktinfo); len(b) < s {
		b = make([]byte, s)
	} else {
		b = b[:s]
	}

	h := (*unix.Cmsghdr)(unsafe.Pointer(&b[0]))
	h.SetLen(unix.CmsgLen(unix.SizeofInet4Pktinfo))
	h.Level = unix.IPPROTO_IP
	h.Type = unix.IP_PKTINFO
	data := b[unix.CmsgLen(0):]
	m := (*unix.Inet4Pktinfo)(unsafe.Pointer(&data[0]))
	m.Ifindex = 0
	m.Spec_dst = addr.As4()
	m.Addr = [4]byte{} // b may contain garbage data, zero it
	return b
}
