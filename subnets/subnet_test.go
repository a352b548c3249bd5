package subnets

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weaveworks/cidrmerge/net/address"
)

func subnet(cidr string) *Subnet {
	s, err := ParseSubnet(cidr, nil)
	if err != nil {
		panic(err)
	}
	return s
}

func cidrsOf(subnets []*Subnet) []string {
	var result []string
	for _, s := range subnets {
		result = append(result, s.String())
	}
	return result
}

func TestParseSubnet(t *testing.T) {
	s, err := ParseSubnet("10.0.0.0/8", map[string]string{"owner": "ops"})
	require.NoError(t, err)
	require.Equal(t, "10.0.0.0/8", s.String())
	require.Equal(t, 8, s.PrefixLen())
	require.Equal(t, "10.255.255.255", s.End().String())
	require.Equal(t, map[string]string{"owner": "ops"}, s.Metadata())

	for _, bad := range []string{"10.0.0.0/33", "10.0.0/8", "300.0.0.0/8", "10.0.0.0"} {
		_, err := ParseSubnet(bad, nil)
		require.ErrorIs(t, err, address.ErrInvalidCIDR, bad)
	}

	_, err = NewSubnet(address.CIDR{Addr: 0, PrefixLen: 40}, nil)
	require.ErrorIs(t, err, address.ErrInvalidCIDR)
}

func TestSubnetImmutable(t *testing.T) {
	meta := map[string]string{"owner": "ops"}
	s, err := ParseSubnet("10.0.0.0/8", meta)
	require.NoError(t, err)
	index := s.Index()

	meta["owner"] = "dev"
	s.Metadata()["owner"] = "dev"
	require.Equal(t, "ops", s.Metadata()["owner"])
	require.Equal(t, index, s.Index())
}

func TestIndex(t *testing.T) {
	a, _ := ParseSubnet("10.0.0.0/8", map[string]string{"owner": "ops"})
	b, _ := ParseSubnet("10.0.0.0/8", map[string]string{"owner": "dev"})
	c, _ := ParseSubnet("10.0.0.0/8", map[string]string{"owner": "ops"})
	d, _ := ParseSubnet("10.0.0.0/8", nil)
	e, _ := ParseSubnet("10.0.0.0/8", map[string]string{})

	require.NotEqual(t, a.Index(), b.Index())
	require.Equal(t, a.Index(), c.Index())
	require.True(t, a.Equal(c))
	require.False(t, a.Equal(d))
	require.Equal(t, d.Index(), e.Index())
	require.Regexp(t, `^10\.0\.0\.0/8-[0-9a-f]{16}$`, a.Index())
}

func TestStatusFor(t *testing.T) {
	for _, tc := range []struct {
		a, b     string
		relation Relation
	}{
		{"10.0.0.0/8", "10.1.0.0/16", Contains},
		{"10.1.0.0/16", "10.0.0.0/8", Within},
		{"10.0.0.0/8", "10.0.0.0/8", Contains},
		{"192.168.0.0/24", "192.168.1.0/24", Disjoint},
		{"10.0.0.0/23", "10.0.1.0/23", Overlapping},
		{"10.0.1.0/23", "10.0.0.0/23", Overlapping},
		{"127.255.255.0/24", "128.0.0.0/24", Disjoint},
		{"0.0.0.0/0", "255.255.255.255/32", Contains},
	} {
		require.Equal(t, tc.relation, subnet(tc.a).StatusFor(subnet(tc.b)), "%s vs %s", tc.a, tc.b)
	}
	require.Equal(t, "distinct", Disjoint.String())
	require.Equal(t, "within", Within.String())
	require.Equal(t, "overlapping", Overlapping.String())
}

func TestReflexive(t *testing.T) {
	for _, cidr := range []string{"0.0.0.0/0", "10.0.0.0/8", "10.0.1.0/23", "255.255.255.255/32"} {
		s := subnet(cidr)
		require.True(t, s.Contains(s), cidr)
		require.True(t, s.Within(s), cidr)
		require.False(t, s.Overlapping(s), cidr)
		require.Equal(t, Contains, s.StatusFor(s), cidr)
	}
}

func randomSubnet(r *rand.Rand) *Subnet {
	prefixLen := 20 + r.Intn(13)
	// Stay in a small space so that relationships are common.
	addr := address.Address(0x0a000000 + r.Intn(1<<14))
	s, err := NewSubnet(address.CIDR{Addr: addr, PrefixLen: prefixLen}, nil)
	if err != nil {
		panic(err)
	}
	return s
}

func TestClassificationExclusive(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20000; i++ {
		a, b := randomSubnet(r), randomSubnet(r)
		require.Equal(t, a.Contains(b), b.Within(a))

		holds := 0
		for _, ok := range []bool{a.Contains(b) || a.Within(b), a.Overlapping(b), !a.intersects(b)} {
			if ok {
				holds++
			}
		}
		require.Equal(t, 1, holds, "%s vs %s", a, b)

		switch a.StatusFor(b) {
		case Contains:
			require.True(t, a.Contains(b))
		case Within:
			require.True(t, a.Within(b) && !a.Contains(b))
		case Overlapping:
			require.True(t, a.Overlapping(b))
			require.Equal(t, Overlapping, b.StatusFor(a))
		case Disjoint:
			require.False(t, a.intersects(b))
			require.Equal(t, Disjoint, b.StatusFor(a))
		}
	}
}

func TestMergeBlocks(t *testing.T) {
	blocks, err := mergeBlocks(subnet("10.0.1.0/23"), subnet("10.0.0.0/23"))
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.0/23", "10.0.2.0/24"}, cidrsOf(blocks))
	for _, b := range blocks {
		require.Empty(t, b.Metadata())
	}
}
