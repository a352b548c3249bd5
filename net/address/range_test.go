package address

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
)

func cidrs(t *testing.T, start, end string) []string {
	blocks, err := RangeToCIDRs(start, end)
	require.NoError(t, err)
	var result []string
	for _, b := range blocks {
		result = append(result, b.String())
	}
	return result
}

func TestRangeToCIDRs(t *testing.T) {
	require.Equal(t, []string{"10.0.0.1/32"}, cidrs(t, "10.0.0.1", "10.0.0.1"))
	require.Equal(t, []string{"10.0.0.0/24"}, cidrs(t, "10.0.0.0", "10.0.0.255"))
	require.Equal(t, []string{"10.0.0.0/23", "10.0.2.0/24"}, cidrs(t, "10.0.0.0", "10.0.2.255"))
	require.Equal(t, []string{"0.0.0.0/0"}, cidrs(t, "0.0.0.0", "255.255.255.255"))
	require.Equal(t, []string{"127.255.255.255/32", "128.0.0.0/32"}, cidrs(t, "127.255.255.255", "128.0.0.0"))
	require.Equal(t,
		[]string{"10.0.0.1/32", "10.0.0.2/31", "10.0.0.4/30", "10.0.0.8/29", "10.0.0.16/28", "10.0.0.32/27", "10.0.0.64/26", "10.0.0.128/26", "10.0.0.192/27", "10.0.0.224/28", "10.0.0.240/29", "10.0.0.248/30", "10.0.0.252/31", "10.0.0.254/32"},
		cidrs(t, "10.0.0.1", "10.0.0.254"))
	require.Equal(t, []string{"255.255.255.254/31"}, cidrs(t, "255.255.255.254", "255.255.255.255"))
	require.Equal(t, []string{"0.0.0.0/31", "0.0.0.2/32"}, cidrs(t, "0.0.0.0", "0.0.0.2"))
}

func TestRangeToCIDRsErrors(t *testing.T) {
	_, err := RangeToCIDRs("10.0.0.2", "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidRange)
	_, err = RangeToCIDRs("10.0.0.300", "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidAddress)
	_, err = RangeToCIDRs("10.0.0.1", "garbage")
	require.ErrorIs(t, err, ErrInvalidAddress)
	_, err = NewRange(ip("10.0.0.2"), ip("10.0.0.1"))
	require.ErrorIs(t, err, ErrInvalidRange)
}

// fewestBlocks counts aligned blocks by taking the widest one that fits
// at each step, which is optimal for binary-aligned interval covering.
func fewestBlocks(start, end Address) int {
	count := 0
	for cur := uint64(start); cur <= uint64(end); count++ {
		size := uint64(1)
		for cur%(size*2) == 0 && cur+size*2-1 <= uint64(end) && size < 1<<32 {
			size *= 2
		}
		cur += size
	}
	return count
}

func TestRangeToCIDRsProperties(t *testing.T) {
	prop := func(a, b Address) bool {
		if a > b {
			a, b = b, a
		}
		blocks, err := Range{Start: a, End: b}.CIDRs()
		if err != nil || len(blocks) == 0 || len(blocks) > 2*MaxPrefixLen {
			return false
		}
		next := uint64(a)
		for _, block := range blocks {
			if !block.IsAligned() || uint64(block.Start()) != next {
				return false
			}
			next = uint64(block.End()) + 1
		}
		return next == uint64(b)+1 && len(blocks) == fewestBlocks(a, b)
	}
	require.NoError(t, quick.Check(prop, &quick.Config{MaxCount: 100000}))
}

func TestRangeOverlapsContains(t *testing.T) {
	r := Range{Start: ip("10.0.0.0"), End: ip("10.0.0.255")}
	require.True(t, r.Contains(ip("10.0.0.255")))
	require.False(t, r.Contains(ip("10.0.1.0")))
	require.True(t, r.Overlaps(Range{Start: ip("10.0.0.255"), End: ip("10.0.1.0")}))
	require.False(t, r.Overlaps(Range{Start: ip("10.0.1.0"), End: ip("10.0.1.0")}))
	require.Equal(t, uint64(256), r.Size())
	require.Equal(t, "[10.0.0.0-10.0.0.255]", r.String())
}

func TestMerge(t *testing.T) {
	ranges := []Range{
		{Start: ip("10.0.0.0"), End: ip("10.0.0.127")},
		{Start: ip("10.0.0.128"), End: ip("10.0.0.255")},
		{Start: ip("10.0.0.200"), End: ip("10.0.0.210")},
		{Start: ip("10.0.2.0"), End: ip("10.0.2.255")},
		{Start: ip("255.255.255.0"), End: MaxAddress},
		{Start: ip("255.255.255.128"), End: MaxAddress},
	}
	require.Equal(t, []Range{
		{Start: ip("10.0.0.0"), End: ip("10.0.0.255")},
		{Start: ip("10.0.2.0"), End: ip("10.0.2.255")},
		{Start: ip("255.255.255.0"), End: MaxAddress},
	}, Merge(ranges))
	require.Nil(t, Merge(nil))
}
