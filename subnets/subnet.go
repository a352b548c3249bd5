/*
Package subnets reduces a set of IPv4 blocks to a minimal partition of
non-overlapping blocks, remembering which inputs each surviving block covers.
*/
package subnets

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/weaveworks/cidrmerge/net/address"
)

// Relation is how one subnet relates to another.
type Relation int

const (
	Disjoint Relation = iota
	Contains
	Within
	Overlapping
)

func (r Relation) String() string {
	switch r {
	case Contains:
		return "contains"
	case Within:
		return "within"
	case Overlapping:
		return "overlapping"
	default:
		return "distinct"
	}
}

// Subnet is an immutable block plus caller metadata. Two subnets with the
// same block and different metadata are different subnets.
type Subnet struct {
	cidr     address.CIDR
	metadata map[string]string
	index    string
}

func NewSubnet(cidr address.CIDR, metadata map[string]string) (*Subnet, error) {
	cidr, err := address.NewCIDR(cidr.Addr, cidr.PrefixLen)
	if err != nil {
		return nil, err
	}
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}
	// encoding/json sorts map keys, so equal maps hash equally.
	encoded, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	return &Subnet{
		cidr:     cidr,
		metadata: meta,
		index:    fmt.Sprintf("%s-%016x", cidr, xxhash.Sum64(encoded)),
	}, nil
}

// ParseSubnet builds a Subnet from a.b.c.d/n notation.
func ParseSubnet(cidr string, metadata map[string]string) (*Subnet, error) {
	c, err := address.ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}
	return NewSubnet(c, metadata)
}

func (s *Subnet) CIDR() address.CIDR      { return s.cidr }
func (s *Subnet) Start() address.Address  { return s.cidr.Start() }
func (s *Subnet) End() address.Address    { return s.cidr.End() }
func (s *Subnet) Range() address.Range    { return s.cidr.Range() }
func (s *Subnet) PrefixLen() int          { return s.cidr.PrefixLen }
func (s *Subnet) String() string          { return s.cidr.String() }
func (s *Subnet) Index() string           { return s.index }
func (s *Subnet) Equal(other *Subnet) bool { return s.index == other.index }

// Metadata returns a copy of the caller's metadata.
func (s *Subnet) Metadata() map[string]string {
	meta := make(map[string]string, len(s.metadata))
	for k, v := range s.metadata {
		meta[k] = v
	}
	return meta
}

// Contains is true when every address of other is in s, including when
// the two blocks are equal.
func (s *Subnet) Contains(other *Subnet) bool {
	return s.Start() <= other.Start() && s.End() >= other.End()
}

func (s *Subnet) Within(other *Subnet) bool {
	return other.Contains(s)
}

// Overlapping is true when the blocks share addresses but neither holds
// the other.
func (s *Subnet) Overlapping(other *Subnet) bool {
	return s.Start() < other.Start() && other.Start() <= s.End() && s.End() < other.End() ||
		other.Start() < s.Start() && s.Start() <= other.End() && other.End() < s.End()
}

// StatusFor classifies s against other, preferring Contains, then Within,
// then Overlapping.
func (s *Subnet) StatusFor(other *Subnet) Relation {
	switch {
	case s.Contains(other):
		return Contains
	case s.Within(other):
		return Within
	case s.Overlapping(other):
		return Overlapping
	}
	return Disjoint
}

// intersects is true for any status other than Disjoint.
func (s *Subnet) intersects(other *Subnet) bool {
	return s.Start() <= other.End() && other.Start() <= s.End()
}

// mergeBlocks decomposes the span of a and b into aligned blocks. The
// spans must touch or overlap for the result to cover exactly a and b.
func mergeBlocks(a, b *Subnet) ([]*Subnet, error) {
	r, err := address.NewRange(address.Min(a.Start(), b.Start()), address.Max(a.End(), b.End()))
	if err != nil {
		return nil, err
	}
	cidrs, err := r.CIDRs()
	if err != nil {
		return nil, err
	}
	blocks := make([]*Subnet, 0, len(cidrs))
	for _, cidr := range cidrs {
		block, err := NewSubnet(cidr, nil)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}
