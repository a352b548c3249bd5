package subnets

// Group records inputs that overlapped, together with the non-overlapping
// blocks that now cover them. Every distinct block is also covered.
type Group struct {
	distinct *subnetSet
	covered  *subnetSet
}

func newGroup() *Group {
	return &Group{distinct: newSubnetSet(), covered: newSubnetSet()}
}

func (g *Group) addDistinct(s *Subnet) {
	g.distinct.add(s)
	g.addCovered(s)
}

func (g *Group) addCovered(s *Subnet) {
	g.covered.add(s)
}

// replaceDistinct swaps old for s in place.
func (g *Group) replaceDistinct(old, s *Subnet) {
	g.distinct.replace(old, s)
	g.addCovered(s)
}

func (g *Group) removeDistinct(s *Subnet) {
	g.distinct.remove(s)
}

// Distinct returns the blocks covering this group, in the order they were added.
func (g *Group) Distinct() []*Subnet { return g.distinct.list() }

// Covered returns every subnet this group covers, distinct blocks included.
func (g *Group) Covered() []*Subnet { return g.covered.list() }

// Covers reports whether s was absorbed into this group.
func (g *Group) Covers(s *Subnet) bool { return g.covered.has(s) }

// absorb moves everything in other into g.
func (g *Group) absorb(other *Group) {
	for _, s := range other.covered.list() {
		g.addCovered(s)
	}
	for _, s := range other.distinct.list() {
		g.addDistinct(s)
	}
}

// Groups is in the order the first overlap of each group was found.
type Groups []*Group

// Subnets returns the distinct blocks of every group, without repeats.
func (gs Groups) Subnets() []*Subnet {
	seen := newSubnetSet()
	for _, g := range gs {
		for _, s := range g.distinct.list() {
			seen.add(s)
		}
	}
	return seen.list()
}
