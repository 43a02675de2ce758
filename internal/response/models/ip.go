package models

import (
	"net/netip"

	dErrors "canvass/pkg/domain-errors"
)

// IpAddress is an optional, validated respondent address. The zero value
// means "not captured"; guards treat it as un-deduplicatable.
type IpAddress struct {
	addr  netip.Addr
	valid bool
}

// NewIpAddress validates value against the standard IPv4/IPv6 grammar.
func NewIpAddress(value string) (IpAddress, error) {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return IpAddress{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid ip address: "+value)
	}
	return IpAddress{addr: addr, valid: true}, nil
}

// NoIpAddress is the absent address.
func NoIpAddress() IpAddress { return IpAddress{} }

// MustIpAddress parses value, panicking if invalid. Tests only.
func MustIpAddress(value string) IpAddress {
	ip, err := NewIpAddress(value)
	if err != nil {
		panic(err)
	}
	return ip
}

// IsZero reports whether no address was captured.
func (ip IpAddress) IsZero() bool { return !ip.valid }

func (ip IpAddress) IsIPv4() bool { return ip.valid && ip.addr.Is4() }

func (ip IpAddress) IsIPv6() bool { return ip.valid && ip.addr.Is6() && !ip.addr.Is4In6() }

func (ip IpAddress) String() string {
	if !ip.valid {
		return ""
	}
	return ip.addr.String()
}

func (ip IpAddress) Equal(other IpAddress) bool {
	if ip.valid != other.valid {
		return false
	}
	return !ip.valid || ip.addr == other.addr
}
