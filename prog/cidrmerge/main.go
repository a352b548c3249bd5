package main

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/weaveworks/cidrmerge/common"
	"github.com/weaveworks/cidrmerge/subnets"
)

var (
	version   = "unreleased"
	logLevel  string
	output    string
	file      string
	reconcile bool
	addr      string
	prof      string
)

func handleError(err error) { common.CheckFatal(err) }

func inputCIDRs(args []string) []string {
	cidrs := append([]string(nil), args...)
	if file != "" {
		fromFile, err := readCIDRFile(file)
		handleError(err)
		cidrs = append(cidrs, fromFile...)
	}
	return cidrs
}

func root(cmd *cobra.Command, args []string) {
	common.SetLogLevel(logLevel)
	if prof != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(prof), profile.NoShutdownHook).Stop()
	}

	d, err := buildDistinct(inputCIDRs(args), reconcile)
	handleError(err)
	handleError(render(os.Stdout, subnets.NewStatus(d), output))
}

func serve(cmd *cobra.Command, args []string) {
	common.SetLogLevel(logLevel)
	common.Log.Infof("Starting cidrmerge %s", version)

	d, err := buildDistinct(inputCIDRs(args), reconcile)
	handleError(err)
	srv := subnets.NewServer(d)

	registry := prometheus.NewRegistry()
	registry.MustRegister(srv)

	router := mux.NewRouter()
	srv.HandleHTTP(router)
	router.Methods("GET").Path("/metrics").Handler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	common.Log.Infoln("Listening on", addr)
	handleError(http.ListenAndServe(addr, router))
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "cidrmerge [CIDR...]",
		Short: "Reduce overlapping IPv4 blocks to distinct subnets",
		Run:   root}

	serveCmd := &cobra.Command{
		Use:   "serve [CIDR...]",
		Short: "Serve the subnet API over HTTP",
		Run:   serve}
	serveCmd.Flags().StringVar(&addr, "addr", ":6790", "HTTP server bind address")
	rootCmd.AddCommand(serveCmd)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logging level (debug, info, warning, error)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "output format (json, yaml)")
	rootCmd.PersistentFlags().StringVarP(&file, "file", "f", "", "read CIDRs one per line from this file, or - for stdin")
	rootCmd.PersistentFlags().StringVar(&prof, "profile", "", "write a CPU profile into this directory")
	rootCmd.PersistentFlags().BoolVar(&reconcile, "reconcile", false, "resolve overlaps left between groups before printing")

	handleError(rootCmd.Execute())
}
