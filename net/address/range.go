package address

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/weaveworks/cidrmerge/common"
)

// Range is [Start, End], both ends included, so that the last address
// of the space can be an end.
type Range struct {
	Start, End Address
}

func NewRange(start, end Address) (Range, error) {
	if start > end {
		return Range{}, errors.Wrapf(ErrInvalidRange, "%s > %s", start, end)
	}
	return Range{Start: start, End: end}, nil
}

func (r Range) Size() uint64               { return RangeSize(r.Start, r.End) }
func (r Range) String() string             { return fmt.Sprintf("[%s-%s]", r.Start, r.End) }
func (r Range) Overlaps(or Range) bool     { return r.Start <= or.End && or.Start <= r.End }
func (r Range) Contains(addr Address) bool { return addr >= r.Start && addr <= r.End }

// CIDRs returns the fewest aligned blocks that exactly cover r, in
// address order.
func (r Range) CIDRs() ([]CIDR, error) {
	if r.Start > r.End {
		return nil, errors.Wrapf(ErrInvalidRange, "%s > %s", r.Start, r.End)
	}
	return r.appendCIDRs(nil), nil
}

// RangeToCIDRs is CIDRs for a range given in dotted-quad form.
func RangeToCIDRs(start, end string) ([]CIDR, error) {
	s, err := ParseIP(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseIP(end)
	if err != nil {
		return nil, err
	}
	return Range{Start: s, End: e}.CIDRs()
}

// smallestPrefixLen is the longest mask whose block still holds n addresses.
func smallestPrefixLen(n uint64) int {
	prefixLen := MaxPrefixLen
	for prefixLen > 0 && uint64(1)<<uint(MaxPrefixLen-prefixLen) < n {
		prefixLen--
	}
	return prefixLen
}

func (r Range) appendCIDRs(dst []CIDR) []CIDR {
	var blockMin, blockMax Address
	prefixLen := smallestPrefixLen(r.Size())
	for ; prefixLen <= MaxPrefixLen; prefixLen++ {
		blockMin = r.Start & Mask(prefixLen)
		blockMax = blockMin | ^Mask(prefixLen)

		if blockMin == r.Start && blockMax == r.End {
			return append(dst, CIDR{Addr: r.Start, PrefixLen: prefixLen})
		}
		if blockMin == r.Start && blockMax < r.End ||
			blockMin > r.Start && blockMax == r.End ||
			blockMin > r.Start && blockMax < r.End {
			break
		}
	}
	// At /32 the block is r.Start alone, so the loop always breaks or returns.

	if blockMin != r.Start {
		before, err := Prev(blockMin)
		common.Assert(err == nil)
		dst = Range{Start: r.Start, End: before}.appendCIDRs(dst)
	}
	dst = append(dst, CIDR{Addr: blockMin, PrefixLen: prefixLen})
	if blockMax != r.End {
		after, err := Next(blockMax)
		common.Assert(err == nil)
		dst = Range{Start: after, End: r.End}.appendCIDRs(dst)
	}
	return dst
}

// Merge merges overlapping and adjacent ranges.
// The given slice has to be sorted by Start.
func Merge(r []Range) []Range {
	var merged []Range

	for i := range r {
		if prev := len(merged) - 1; prev >= 0 && (merged[prev].End == MaxAddress || merged[prev].End+1 >= r[i].Start) {
			merged[prev].End = Max(merged[prev].End, r[i].End)
		} else {
			merged = append(merged, r[i])
		}
	}

	return merged
}
