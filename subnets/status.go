package subnets

type Status struct {
	Inputs   int           `json:"inputs" yaml:"inputs"`
	Distinct []SubnetEntry `json:"distinct" yaml:"distinct"`
	Groups   []GroupStatus `json:"groups" yaml:"groups"`
	All      []SubnetEntry `json:"all" yaml:"all"`
	Coverage []string      `json:"coverage" yaml:"coverage"`
}

type SubnetEntry struct {
	CIDR     string            `json:"cidr" yaml:"cidr"`
	Index    string            `json:"index" yaml:"index"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

type GroupStatus struct {
	Distinct []SubnetEntry `json:"distinct" yaml:"distinct"`
	Covered  []SubnetEntry `json:"covered" yaml:"covered"`
}

func NewStatus(d *Distinct) *Status {
	if d == nil {
		return nil
	}

	var coverage []string
	for _, r := range d.Coverage() {
		coverage = append(coverage, r.String())
	}

	return &Status{
		d.inputs.len(),
		newSubnetEntrySlice(d.Subnets()),
		newGroupStatusSlice(d.groups),
		newSubnetEntrySlice(d.All()),
		coverage}
}

func newSubnetEntrySlice(subnets []*Subnet) []SubnetEntry {
	slice := []SubnetEntry{}
	for _, s := range subnets {
		var metadata map[string]string
		if len(s.metadata) > 0 {
			metadata = s.Metadata()
		}
		slice = append(slice, SubnetEntry{s.String(), s.Index(), metadata})
	}
	return slice
}

func newGroupStatusSlice(groups Groups) []GroupStatus {
	slice := []GroupStatus{}
	for _, g := range groups {
		slice = append(slice, GroupStatus{newSubnetEntrySlice(g.Distinct()), newSubnetEntrySlice(g.Covered())})
	}
	return slice
}
