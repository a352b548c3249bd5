package subnets

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/weaveworks/cidrmerge/common"
)

// Server serialises access to one Distinct for HTTP clients.
type Server struct {
	sync.Mutex
	distinct *Distinct
	actions  *prometheus.CounterVec
}

func NewServer(d *Distinct) *Server {
	return &Server{
		distinct: d,
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cidrmerge_adds_total",
				Help: "Subnets added, by what classification did with them.",
			},
			[]string{"action"},
		),
	}
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
	common.Log.Warnln(err.Error())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		common.Log.Warnf("[http] error encoding response: %v", err)
	}
}

// parseMetadata turns repeated key=value form values into a map.
func parseMetadata(values []string) (map[string]string, error) {
	metadata := make(map[string]string, len(values))
	for _, kv := range values {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("Invalid metadata %q: want key=value", kv)
		}
		metadata[parts[0]] = parts[1]
	}
	return metadata, nil
}

// Add is Distinct.Add under the server lock, counted by action.
func (srv *Server) Add(s *Subnet) (Action, error) {
	srv.Lock()
	defer srv.Unlock()
	action, err := srv.distinct.Add(s)
	if err == nil {
		srv.actions.WithLabelValues(action.String()).Inc()
	}
	return action, err
}

func (srv *Server) Status() *Status {
	srv.Lock()
	defer srv.Unlock()
	return NewStatus(srv.distinct)
}

// query runs f under the server lock.
func (srv *Server) query(f func(d *Distinct) interface{}) interface{} {
	srv.Lock()
	defer srv.Unlock()
	return f(srv.distinct)
}

// HandleHTTP wires up the subnet endpoints to the provided router.
func (srv *Server) HandleHTTP(router *mux.Router) {
	router.Methods("POST").Path("/subnets").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			badRequest(w, err)
			return
		}
		metadata, err := parseMetadata(r.Form["meta"])
		if err != nil {
			badRequest(w, err)
			return
		}
		s, err := ParseSubnet(r.FormValue("cidr"), metadata)
		if err != nil {
			badRequest(w, err)
			return
		}
		action, err := srv.Add(s)
		if err != nil {
			badRequest(w, fmt.Errorf("Unable to add %s: %v", s, err))
			return
		}
		fmt.Fprintln(w, action)
	})

	router.Methods("GET").Path("/subnets").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, srv.query(func(d *Distinct) interface{} { return newSubnetEntrySlice(d.Subnets()) }))
	})

	router.Methods("GET").Path("/groups").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, srv.query(func(d *Distinct) interface{} { return newGroupStatusSlice(d.groups) }))
	})

	router.Methods("GET").Path("/all").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, srv.query(func(d *Distinct) interface{} { return newSubnetEntrySlice(d.All()) }))
	})

	router.Methods("GET").Path("/status").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, srv.Status())
	})

	router.Methods("POST").Path("/reconcile").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.Lock()
		steps, err := srv.distinct.Reconcile()
		srv.Unlock()
		if err != nil {
			badRequest(w, err)
			return
		}
		fmt.Fprintln(w, steps)
	})
}
