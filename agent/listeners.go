package agent

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// tcpListen is the LISTEN state in the kernel's socket tables.
const tcpListen = "0A"

// listenerTable indexes the listening TCP sockets of this machine for
// endpoint lookups.
type listenerTable struct {
	// ports holds every port with at least one listener, regardless of the
	// bound address
	ports map[int]bool

	// wildcard holds ports bound on 0.0.0.0 or ::
	wildcard map[int]bool

	// exact holds "ip:port" keys for specifically bound sockets
	exact map[string]bool
}

// covers reports whether a listening socket serves the given endpoint. A
// wildcard binding is satisfied by any listener on the port; a specific
// binding is satisfied by a wildcard socket or an exact address match.
func (t *listenerTable) covers(bindAddress string, port int) bool {
	if bindAddress == "0.0.0.0" {
		return t.ports[port]
	}
	if t.wildcard[port] {
		return true
	}
	return t.exact[net.JoinHostPort(bindAddress, strconv.Itoa(port))]
}

// readListenerTable parses the kernel's TCP socket tables. IPv6 sockets
// count only when bound to the wildcard; a dual-stack listener on :: covers
// the IPv4 endpoints the pool hands out.
func readListenerTable() (*listenerTable, error) {
	if runtime.GOOS != "linux" {
		return nil, fmt.Errorf("listener observation requires linux")
	}

	table := &listenerTable{
		ports:    make(map[int]bool),
		wildcard: make(map[int]bool),
		exact:    make(map[string]bool),
	}

	if err := table.readProcNet("/proc/net/tcp", false); err != nil {
		return nil, err
	}
	// tcp6 is absent on v4-only kernels
	if err := table.readProcNet("/proc/net/tcp6", true); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return table, nil
}

// readProcNet scans one socket table file and records its LISTEN entries.
func (t *listenerTable) readProcNet(path string, ipv6 bool) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	// Skip the header line
	scanner.Scan()

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || fields[3] != tcpListen {
			continue
		}

		addrHex, portHex, ok := strings.Cut(fields[1], ":")
		if !ok {
			continue
		}
		port64, err := strconv.ParseUint(portHex, 16, 16)
		if err != nil {
			continue
		}
		port := int(port64)

		t.ports[port] = true

		if isZeroHex(addrHex) {
			t.wildcard[port] = true
			continue
		}

		if !ipv6 {
			if ip := hexToIPv4(addrHex); ip != nil {
				t.exact[net.JoinHostPort(ip.String(), strconv.Itoa(port))] = true
			}
		}
	}
	return scanner.Err()
}

// isZeroHex reports whether a hex-encoded address is all zeros, i.e. the
// wildcard address in either family.
func isZeroHex(s string) bool {
	for _, c := range s {
		if c != '0' {
			return false
		}
	}
	return len(s) > 0
}

// hexToIPv4 decodes the kernel's little-endian hex encoding of an IPv4
// address, e.g. "0100007F" to 127.0.0.1.
func hexToIPv4(s string) net.IP {
	if len(s) != 8 {
		return nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil
	}
	return net.IPv4(byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
