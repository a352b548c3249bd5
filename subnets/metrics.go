package subnets

import (
	"github.com/prometheus/client_golang/prometheus"
)

func desc(fqName, help string, variableLabels ...string) *prometheus.Desc {
	return prometheus.NewDesc(fqName, help, variableLabels, prometheus.Labels{})
}

func intGauge(desc *prometheus.Desc, val int, labels ...string) prometheus.Metric {
	return prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(val), labels...)
}

var (
	inputsDesc  = desc("cidrmerge_inputs", "Number of subnets added.")
	subnetsDesc = desc("cidrmerge_distinct_subnets", "Number of distinct subnets.", "state")
	groupsDesc  = desc("cidrmerge_groups", "Number of overlap groups.")
)

func (srv *Server) Describe(ch chan<- *prometheus.Desc) {
	ch <- inputsDesc
	ch <- subnetsDesc
	ch <- groupsDesc
	srv.actions.Describe(ch)
}

func (srv *Server) Collect(ch chan<- prometheus.Metric) {
	srv.Lock()
	d := srv.distinct
	inputs, ungrouped, grouped, groups := d.inputs.len(), d.subnets.len(), len(d.groups.Subnets()), len(d.groups)
	srv.Unlock()

	ch <- intGauge(inputsDesc, inputs)
	ch <- intGauge(subnetsDesc, ungrouped, "ungrouped")
	ch <- intGauge(subnetsDesc, grouped, "grouped")
	ch <- intGauge(groupsDesc, groups)
	srv.actions.Collect(ch)
}
