package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/weaveworks/cidrmerge/common"
	"github.com/weaveworks/cidrmerge/subnets"
)

// readCIDRs returns one CIDR per non-blank line, skipping # comments.
func readCIDRs(r io.Reader) ([]string, error) {
	var cidrs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			cidrs = append(cidrs, line)
		}
	}
	return cidrs, scanner.Err()
}

func readCIDRFile(path string) ([]string, error) {
	if path == "-" {
		return readCIDRs(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCIDRs(f)
}

// buildDistinct adds every CIDR, reporting all the bad ones together.
func buildDistinct(cidrs []string, reconcile bool) (*subnets.Distinct, error) {
	d, err := subnets.NewDistinct()
	if err != nil {
		return nil, err
	}
	var errs []error
	for _, cidr := range cidrs {
		if _, err := d.AddCIDR(cidr, nil); err != nil {
			errs = append(errs, fmt.Errorf("%q: %v", cidr, err))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%d invalid CIDRs:\n%s", len(errs), common.ErrorMessages(errs))
	}
	if reconcile {
		if _, err := d.Reconcile(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func render(w io.Writer, status *subnets.Status, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(status); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("Unknown output format %q", format)
}
