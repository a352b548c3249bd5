package subnets

// subnetSet is a set of subnets keyed by Index that iterates in insertion order.
type subnetSet struct {
	order   []string
	byIndex map[string]*Subnet
}

func newSubnetSet() *subnetSet {
	return &subnetSet{byIndex: make(map[string]*Subnet)}
}

// add is a no-op when an equal subnet is already present.
func (set *subnetSet) add(s *Subnet) {
	if _, found := set.byIndex[s.Index()]; found {
		return
	}
	set.byIndex[s.Index()] = s
	set.order = append(set.order, s.Index())
}

func (set *subnetSet) remove(s *Subnet) bool {
	if _, found := set.byIndex[s.Index()]; !found {
		return false
	}
	delete(set.byIndex, s.Index())
	for i, index := range set.order {
		if index == s.Index() {
			set.order = append(set.order[:i], set.order[i+1:]...)
			break
		}
	}
	return true
}

// replace puts s where old was, keeping the iteration order.
func (set *subnetSet) replace(old, s *Subnet) {
	if old.Equal(s) || set.has(s) {
		set.remove(old)
		set.add(s)
		return
	}
	for i, index := range set.order {
		if index == old.Index() {
			delete(set.byIndex, index)
			set.order[i] = s.Index()
			set.byIndex[s.Index()] = s
			return
		}
	}
	set.add(s)
}

func (set *subnetSet) has(s *Subnet) bool {
	_, found := set.byIndex[s.Index()]
	return found
}

func (set *subnetSet) len() int { return len(set.order) }

// list returns a snapshot, so callers may mutate the set while iterating.
func (set *subnetSet) list() []*Subnet {
	result := make([]*Subnet, 0, len(set.order))
	for _, index := range set.order {
		result = append(result, set.byIndex[index])
	}
	return result
}
