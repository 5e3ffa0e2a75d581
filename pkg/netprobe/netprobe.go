// Package netprobe implements the dashboard's network reconnaissance tools:
// TCP port probing and DNS record lookup.
package netprobe

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"time"

	"github.com/scandeck/scandeck/pkg/defaults"
	"github.com/scandeck/scandeck/pkg/duration"
)

// PortState describes the outcome of one TCP connect attempt.
type PortState struct {
	Port  int    `json:"port"`
	Open  bool   `json:"open"`
	Error string `json:"error,omitempty"`
}

// PortResult is the port-probe report for one host.
type PortResult struct {
	Host   string      `json:"host"`
	Ports  []PortState `json:"ports"`
	Open   []int       `json:"openPorts"`
	Error  *string     `json:"error,omitempty"`
	TookMS int64       `json:"tookMs"`
}

// ProbePorts attempts a TCP connect to each requested port on host, one at a
// time, with a short fixed timeout per port. Nil or empty ports selects the
// common service ports.
func ProbePorts(ctx context.Context, host string, ports []int) *PortResult {
	res := &PortResult{Host: host, Open: []int{}}
	if host == "" {
		msg := "host is required"
		res.Error = &msg
		return res
	}
	if len(ports) == 0 {
		ports = defaults.CommonPorts
	}
	start := time.Now()
	for _, port := range ports {
		if ctx.Err() != nil {
			msg := ctx.Err().Error()
			res.Error = &msg
			break
		}
		state := PortState{Port: port}
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		d := net.Dialer{Timeout: duration.PortProbe}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			state.Error = err.Error()
		} else {
			conn.Close()
			state.Open = true
			res.Open = append(res.Open, port)
		}
		res.Ports = append(res.Ports, state)
	}
	sort.Ints(res.Open)
	res.TookMS = time.Since(start).Milliseconds()
	return res
}

// DNSResult is the lookup report for one name.
type DNSResult struct {
	Host  string   `json:"host"`
	A     []string `json:"a,omitempty"`
	CNAME string   `json:"cname,omitempty"`
	MX    []string `json:"mx,omitempty"`
	TXT   []string `json:"txt,omitempty"`
	NS    []string `json:"ns,omitempty"`
	Error *string  `json:"error,omitempty"`
}

// LookupDNS resolves the common record types for host with the default
// resolver. Individual record types that do not exist are simply absent; the
// result carries an error only when the name resolves to nothing at all.
func LookupDNS(ctx context.Context, host string) *DNSResult {
	res := &DNSResult{Host: host}
	if host == "" {
		msg := "host is required"
		res.Error = &msg
		return res
	}
	ctx, cancel := context.WithTimeout(ctx, duration.DNSLookup)
	defer cancel()

	r := net.DefaultResolver
	if addrs, err := r.LookupHost(ctx, host); err == nil {
		res.A = addrs
	}
	if cname, err := r.LookupCNAME(ctx, host); err == nil && cname != host+"." {
		res.CNAME = cname
	}
	if mxs, err := r.LookupMX(ctx, host); err == nil {
		for _, mx := range mxs {
			res.MX = append(res.MX, fmt.Sprintf("%d %s", mx.Pref, mx.Host))
		}
	}
	if txts, err := r.LookupTXT(ctx, host); err == nil {
		res.TXT = txts
	}
	if nss, err := r.LookupNS(ctx, host); err == nil {
		for _, ns := range nss {
			res.NS = append(res.NS, ns.Host)
		}
	}
	if len(res.A) == 0 && res.CNAME == "" && len(res.MX) == 0 && len(res.TXT) == 0 && len(res.NS) == 0 {
		msg := "no DNS records found for " + host
		res.Error = &msg
	}
	return res
}
