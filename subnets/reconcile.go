package subnets

import (
	"github.com/pkg/errors"

	"github.com/weaveworks/cidrmerge/common"
)

// Reconcile resolves overlaps that single-pass Add leaves behind, until no
// two distinct blocks anywhere share an address. It returns the number of
// overlaps it resolved. Ungrouped subnets are re-classified, groups whose
// blocks meet are folded into the earlier group, and blocks within a group
// are merged.
func (d *Distinct) Reconcile() (int, error) {
	steps := 0
	for {
		changed, err := d.reconcileOnce()
		if err != nil {
			return steps, err
		}
		if !changed {
			if steps > 0 {
				common.Log.Debugf("[distinct] reconciled %d overlaps", steps)
			}
			return steps, nil
		}
		steps++
	}
}

func (d *Distinct) reconcileOnce() (bool, error) {
	for _, s := range d.subnets.list() {
		if intersecting(d.groups, s) >= 0 {
			d.subnets.remove(s)
			if _, err := d.classify(s); err != nil {
				d.subnets.add(s)
				return false, errors.Wrapf(err, "reclassifying %s", s)
			}
			return true, nil
		}
	}

	for i := 1; i < len(d.groups); i++ {
		for _, s := range d.groups[i].distinct.list() {
			if j := intersecting(d.groups[:i], s); j >= 0 {
				d.groups[j].absorb(d.groups[i])
				d.groups = append(d.groups[:i], d.groups[i+1:]...)
				return true, nil
			}
		}
	}

	for _, g := range d.groups {
		if changed, err := g.mergeOverlaps(); changed || err != nil {
			return changed, err
		}
	}
	return false, nil
}

// intersecting returns the position of the first group with a distinct
// block sharing an address with s, or -1.
func intersecting(groups Groups, s *Subnet) int {
	for i, g := range groups {
		for _, member := range g.distinct.list() {
			if member.intersects(s) {
				return i
			}
		}
	}
	return -1
}

// mergeOverlaps resolves the first pair of distinct blocks in g that share
// addresses. A contained block is dropped from distinct; partly
// overlapping blocks are replaced by the decomposition of their span.
func (g *Group) mergeOverlaps() (bool, error) {
	blocks := g.distinct.list()
	for i := range blocks {
		for j := i + 1; j < len(blocks); j++ {
			a, b := blocks[i], blocks[j]
			switch a.StatusFor(b) {
			case Contains:
				g.removeDistinct(b)
			case Within:
				g.removeDistinct(a)
			case Overlapping:
				merged, err := mergeBlocks(a, b)
				if err != nil {
					return false, errors.Wrapf(err, "merging %s and %s", a, b)
				}
				g.removeDistinct(a)
				g.removeDistinct(b)
				for _, block := range merged {
					g.addDistinct(block)
				}
			default:
				continue
			}
			return true, nil
		}
	}
	return false, nil
}
