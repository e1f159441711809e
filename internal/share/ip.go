package share

import (
	"net/netip"
	"strconv"
	"strings"
)

// IPToInt converts a dotted-quad IPv4 address to its 32-bit form. Unparsable
// or non-IPv4 input maps to 0, which reads back as "unknown uploader".
func IPToInt(addr string) uint32 {
	host := strings.TrimSpace(addr)
	if host == "" {
		return 0
	}
	// Tolerate host:port remote address strings.
	if ap, err := netip.ParseAddrPort(host); err == nil {
		host = ap.Addr().String()
	}
	parsed, err := netip.ParseAddr(host)
	if err != nil {
		return 0
	}
	if parsed.Is4In6() {
		parsed = parsed.Unmap()
	}
	if !parsed.Is4() {
		return 0
	}
	b := parsed.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// IntToIP converts a stored 32-bit address back to dotted-quad form.
func IntToIP(v uint32) string {
	parts := []string{
		strconv.FormatUint(uint64(v>>24&0xff), 10),
		strconv.FormatUint(uint64(v>>16&0xff), 10),
		strconv.FormatUint(uint64(v>>8&0xff), 10),
		strconv.FormatUint(uint64(v&0xff), 10),
	}
	return strings.Join(parts, ".")
}
