// Package cidr classifies IPv4 CIDR ranges for exposure checks.
package cidr

import "net/netip"

type Class int

const (
	Invalid Class = iota
	Private
	Public
)

func (c Class) String() string {
	switch c {
	case Private:
		return "private"
	case Public:
		return "public"
	default:
		return "invalid"
	}
}

var rfc1918 = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

// Classify maps a CIDR string to Public, Private, or Invalid. It is total
// over strings: anything that is not a syntactically valid IPv4 prefix
// (IPv6 included) yields Invalid rather than an error, so scanning stays
// robust against dirty input. Ranges fully contained in an RFC1918 block
// are Private; every other valid range, 0.0.0.0/0 included, is treated as
// internet-reachable and classifies Public.
func Classify(s string) Class {
	p, err := netip.ParsePrefix(s)
	if err != nil || !p.Addr().Is4() {
		return Invalid
	}
	p = p.Masked()
	for _, blk := range rfc1918 {
		if p.Bits() >= blk.Bits() && blk.Contains(p.Addr()) {
			return Private
		}
	}
	return Public
}
