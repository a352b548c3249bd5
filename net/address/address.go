package address

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Errors returned by parsing and arithmetic
var (
	ErrInvalidCIDR      = errors.New("invalid CIDR")
	ErrInvalidAddress   = errors.New("invalid IPv4 address")
	ErrInvalidRange     = errors.New("range start is after range end")
	ErrAddressOverflow  = errors.New("no address after 255.255.255.255")
	ErrAddressUnderflow = errors.New("no address before 0.0.0.0")
)

const (
	MaxAddress   = Address(0xffffffff)
	MaxPrefixLen = 32
)

// Using 32-bit integer to represent IPv4 address
type Address uint32

// parseDecimal parses 1 to 3 decimal digits with no leading zero, so
// that 010 is never read as octal.
func parseDecimal(s string, bitSize int) (uint64, bool) {
	if s == "" || len(s) > 3 || len(s) > 1 && s[0] == '0' {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(s, 10, bitSize)
	return n, err == nil
}

// ParseIP accepts only dotted-quad IPv4 with four decimal octets.
func ParseIP(s string) (Address, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return 0, errors.Wrapf(ErrInvalidAddress, "%q", s)
	}
	var r Address
	for _, part := range parts {
		octet, ok := parseDecimal(part, 8)
		if !ok {
			return 0, errors.Wrapf(ErrInvalidAddress, "%q", s)
		}
		r = r<<8 | Address(octet)
	}
	return r, nil
}

// FromIP4 converts an ipv4 address to our integer address type
func FromIP4(ip4 net.IP) (r Address) {
	for _, b := range ip4.To4() {
		r <<= 8
		r |= Address(b)
	}
	return
}

// IP4 converts our integer address type to an ipv4 address
func (addr Address) IP4() (r net.IP) {
	r = make([]byte, net.IPv4len)
	for i := 3; i >= 0; i-- {
		r[i] = byte(addr)
		addr >>= 8
	}
	return
}

func (addr Address) String() string {
	return addr.IP4().String()
}

func (addr Address) Less(other Address) bool    { return addr < other }
func (addr Address) Greater(other Address) bool { return addr > other }

// Next returns the address after addr.
func Next(addr Address) (Address, error) {
	if addr == MaxAddress {
		return 0, ErrAddressOverflow
	}
	return addr + 1, nil
}

// Prev returns the address before addr.
func Prev(addr Address) (Address, error) {
	if addr == 0 {
		return 0, ErrAddressUnderflow
	}
	return addr - 1, nil
}

// RangeSize is the number of addresses between a and b, both included,
// in whichever order they are given.
func RangeSize(a, b Address) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(b-a) + 1
}

// Mask returns the netmask for prefixLen as an address.
func Mask(prefixLen int) Address {
	return MaxAddress << uint(MaxPrefixLen-prefixLen)
}

func Min(a, b Address) Address {
	if a > b {
		return b
	}
	return a
}

func Max(a, b Address) Address {
	if a > b {
		return a
	}
	return b
}

// CIDR is a block of 2^(32-PrefixLen) addresses beginning at Addr.
// Addr is kept as written, so it need not be aligned to the mask.
type CIDR struct {
	Addr      Address
	PrefixLen int
}

// ParseCIDR parses a.b.c.d/n. The block starts at a.b.c.d as written and
// must end at or below 255.255.255.255, so 255.255.255.128/24 is rejected.
func ParseCIDR(s string) (CIDR, error) {
	slash := strings.IndexByte(s, '/')
	if slash < 0 {
		return CIDR{}, errors.Wrapf(ErrInvalidCIDR, "%q: missing prefix length", s)
	}
	addr, err := ParseIP(s[:slash])
	if err != nil {
		return CIDR{}, errors.Wrapf(ErrInvalidCIDR, "%q: %v", s, err)
	}
	prefixLen, ok := parseDecimal(s[slash+1:], 8)
	if !ok || prefixLen > MaxPrefixLen {
		return CIDR{}, errors.Wrapf(ErrInvalidCIDR, "%q: bad prefix length", s)
	}
	return NewCIDR(addr, int(prefixLen))
}

// NewCIDR checks the prefix length and that the block does not run
// past the end of the address space.
func NewCIDR(addr Address, prefixLen int) (CIDR, error) {
	if prefixLen < 0 || prefixLen > MaxPrefixLen {
		return CIDR{}, errors.Wrapf(ErrInvalidCIDR, "%s/%d: bad prefix length", addr, prefixLen)
	}
	cidr := CIDR{Addr: addr, PrefixLen: prefixLen}
	if uint64(addr)+cidr.Size()-1 > uint64(MaxAddress) {
		return CIDR{}, errors.Wrapf(ErrInvalidCIDR, "%s: block extends past %s", cidr, MaxAddress)
	}
	return cidr, nil
}

func (cidr CIDR) Size() uint64 { return 1 << uint(MaxPrefixLen-cidr.PrefixLen) }

// Start is the first address of the block (its network address when aligned).
func (cidr CIDR) Start() Address { return cidr.Addr }

// End is the last address of the block (its broadcast address when aligned).
func (cidr CIDR) End() Address { return Address(uint64(cidr.Addr) + cidr.Size() - 1) }

func (cidr CIDR) Range() Range { return Range{Start: cidr.Start(), End: cidr.End()} }

func (cidr CIDR) IsAligned() bool { return cidr.Addr&^Mask(cidr.PrefixLen) == 0 }

func (cidr CIDR) String() string {
	return fmt.Sprintf("%s/%d", cidr.Addr.String(), cidr.PrefixLen)
}
