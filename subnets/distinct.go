package subnets

import (
	"errors"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/weaveworks/cidrmerge/common"
	"github.com/weaveworks/cidrmerge/net/address"
)

// Action is what Add did with a subnet.
type Action int

const (
	// Inserted: overlapped nothing, kept as an ungrouped distinct subnet.
	Inserted Action = iota
	// Absorbed: within a group's distinct block, now only covered by it.
	Absorbed
	// Replaced: contained a group's distinct block and took its place.
	Replaced
	// Merged: partly overlapped a group's distinct block; the span of the
	// two was decomposed into new distinct blocks.
	Merged
	// Grouped: related to an ungrouped subnet; the pair formed a new group.
	Grouped
	// Duplicate: an equal subnet is already distinct or covered; nothing changed.
	Duplicate
)

func (a Action) String() string {
	switch a {
	case Inserted:
		return "inserted"
	case Absorbed:
		return "absorbed"
	case Replaced:
		return "replaced"
	case Merged:
		return "merged"
	case Grouped:
		return "grouped"
	case Duplicate:
		return "duplicate"
	}
	return "unknown"
}

// Errors returned by checkInvariants
var (
	ErrInputUnreachable    = errors.New("Input is neither distinct nor covered by a group")
	ErrDistinctOverlap     = errors.New("Ungrouped distinct subnets overlap")
	ErrCoveredOutsideGroup = errors.New("Covered subnet is outside its group's distinct blocks")
	ErrEmptyGroup          = errors.New("Group has no distinct blocks")
)

// Distinct incrementally classifies subnets into ungrouped distinct
// subnets and overlap groups. It is not safe for concurrent use.
type Distinct struct {
	inputs  *subnetSet
	subnets *subnetSet // ungrouped, pairwise disjoint
	groups  Groups
}

func emptyDistinct() *Distinct {
	return &Distinct{inputs: newSubnetSet(), subnets: newSubnetSet()}
}

// NewDistinct adds the given subnets in order.
func NewDistinct(subnets ...*Subnet) (*Distinct, error) {
	d := emptyDistinct()
	for _, s := range subnets {
		if _, err := d.Add(s); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// FromCIDRs parses and adds each CIDR in order, without metadata.
func FromCIDRs(cidrs []string) (*Distinct, error) {
	d := emptyDistinct()
	for _, cidr := range cidrs {
		if _, err := d.AddCIDR(cidr, nil); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Distinct) AddCIDR(cidr string, metadata map[string]string) (Action, error) {
	s, err := ParseSubnet(cidr, metadata)
	if err != nil {
		return Inserted, err
	}
	return d.Add(s)
}

// Add classifies s against the current state and records it as an input.
// Only the first relationship found is acted on; see Reconcile.
// On error nothing has changed.
func (d *Distinct) Add(s *Subnet) (Action, error) {
	action, err := d.classify(s)
	if err != nil {
		return action, err
	}
	d.inputs.add(s)
	common.Log.WithFields(logrus.Fields{"cidr": s, "action": action}).Debug("[distinct] classified subnet")
	return action, nil
}

// tracked reports whether an equal subnet is ungrouped or covered by a group.
func (d *Distinct) tracked(s *Subnet) bool {
	if d.subnets.has(s) {
		return true
	}
	for _, g := range d.groups {
		if g.Covers(s) {
			return true
		}
	}
	return false
}

func (d *Distinct) classify(s *Subnet) (Action, error) {
	if d.tracked(s) {
		return Duplicate, nil
	}

	for _, g := range d.groups {
		for _, member := range g.distinct.list() {
			switch s.StatusFor(member) {
			case Within:
				g.addCovered(s)
				return Absorbed, nil
			case Contains:
				g.replaceDistinct(member, s)
				return Replaced, nil
			case Overlapping:
				blocks, err := mergeBlocks(s, member)
				if err != nil {
					return Merged, err
				}
				g.removeDistinct(member)
				g.addCovered(s)
				for _, block := range blocks {
					g.addDistinct(block)
				}
				d.debugMerge(s, member, blocks)
				return Merged, nil
			}
		}
	}

	for _, member := range d.subnets.list() {
		g := newGroup()
		switch s.StatusFor(member) {
		case Contains:
			g.addDistinct(s)
			g.addCovered(member)
		case Within:
			g.addDistinct(member)
			g.addCovered(s)
		case Overlapping:
			blocks, err := mergeBlocks(s, member)
			if err != nil {
				return Grouped, err
			}
			g.addCovered(member)
			g.addCovered(s)
			for _, block := range blocks {
				g.addDistinct(block)
			}
			d.debugMerge(s, member, blocks)
		default:
			continue
		}
		d.subnets.remove(member)
		d.groups = append(d.groups, g)
		return Grouped, nil
	}

	d.subnets.add(s)
	return Inserted, nil
}

func (d *Distinct) debugMerge(s, member *Subnet, blocks []*Subnet) {
	if !common.Log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	common.Log.WithFields(logrus.Fields{"cidr": s, "with": member, "blocks": blocks}).Debug("[distinct] merged overlapping subnets")
}

// Inputs returns every subnet ever added, in the order first added.
func (d *Distinct) Inputs() []*Subnet { return d.inputs.list() }

// Subnets returns the ungrouped distinct subnets.
func (d *Distinct) Subnets() []*Subnet { return d.subnets.list() }

// Groups returns the overlap groups in the order they were created.
func (d *Distinct) Groups() Groups {
	return append(Groups(nil), d.groups...)
}

// All returns the partition: ungrouped distinct subnets followed by the
// distinct blocks of each group, each index at most once.
func (d *Distinct) All() []*Subnet {
	all := newSubnetSet()
	for _, s := range d.subnets.list() {
		all.add(s)
	}
	for _, s := range d.groups.Subnets() {
		all.add(s)
	}
	return all.list()
}

// AllMap is All keyed by Index.
func (d *Distinct) AllMap() map[string]*Subnet {
	result := make(map[string]*Subnet)
	for _, s := range d.All() {
		result[s.Index()] = s
	}
	return result
}

// Coverage returns the address ranges covered by all inputs, merged and
// sorted.
func (d *Distinct) Coverage() []address.Range {
	return coverage(d.All())
}

func coverage(subnets []*Subnet) []address.Range {
	ranges := make([]address.Range, 0, len(subnets))
	for _, s := range subnets {
		ranges = append(ranges, s.Range())
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return address.Merge(ranges)
}

func (d *Distinct) checkInvariants() error {
	for _, s := range d.inputs.list() {
		reachable := d.subnets.has(s)
		for _, g := range d.groups {
			reachable = reachable || g.Covers(s)
		}
		if !reachable {
			return ErrInputUnreachable
		}
	}

	ungrouped := d.subnets.list()
	for i := range ungrouped {
		for j := i + 1; j < len(ungrouped); j++ {
			if ungrouped[i].intersects(ungrouped[j]) {
				return ErrDistinctOverlap
			}
		}
	}

	for _, g := range d.groups {
		if g.distinct.len() == 0 {
			return ErrEmptyGroup
		}
		spans := coverage(g.Distinct())
		for _, s := range g.Covered() {
			inside := false
			for _, span := range spans {
				inside = inside || span.Start <= s.Start() && s.End() <= span.End
			}
			if !inside {
				return ErrCoveredOutsideGroup
			}
		}
	}
	return nil
}
