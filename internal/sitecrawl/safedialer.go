package sitecrawl

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"syscall"
	"time"
)

var errBlockedAddress = errors.New("crawling private or reserved network addresses is not allowed")

type reservedRange struct {
	prefix netip.Prefix
	class  string
}

// Ranges the netip.Addr predicates do not already classify.
var reservedRanges = []reservedRange{
	{netip.MustParsePrefix("100.64.0.0/10"), "carrier-grade NAT"},
	{netip.MustParsePrefix("192.0.0.0/24"), "IETF protocol assignment"},
	{netip.MustParsePrefix("192.0.2.0/24"), "documentation"},
	{netip.MustParsePrefix("198.18.0.0/15"), "benchmarking"},
	{netip.MustParsePrefix("198.51.100.0/24"), "documentation"},
	{netip.MustParsePrefix("203.0.113.0/24"), "documentation"},
	// NAT64 can embed any IPv4 address, private ones included.
	{netip.MustParsePrefix("64:ff9b::/96"), "NAT64"},
}

// crawlDialer only connects to public unicast addresses. The check runs on
// the resolved address, so a site whose DNS points at the host's own network
// is refused at connect time.
func crawlDialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   guardDial,
	}
}

func guardDial(_, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %w", errBlockedAddress, err)
	}
	if class := addressClass(addrPort.Addr()); class != "" {
		return fmt.Errorf("%w: %s is a %s address", errBlockedAddress, addrPort.Addr(), class)
	}
	return nil
}

// addressClass names the kind of non-public address addr is, or returns ""
// when the crawler may dial it. IPv4-mapped addresses are judged by their
// IPv4 form.
func addressClass(addr netip.Addr) string {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid():
		return "invalid"
	case addr.IsUnspecified():
		return "unspecified"
	case addr.IsLoopback():
		return "loopback"
	case addr.IsLinkLocalUnicast(), addr.IsLinkLocalMulticast():
		return "link-local"
	case addr.IsMulticast():
		return "multicast"
	case addr.IsPrivate():
		return "private"
	case !addr.IsGlobalUnicast():
		return "non-unicast"
	}
	for _, r := range reservedRanges {
		if r.prefix.Contains(addr) {
			return r.class
		}
	}
	return ""
}
