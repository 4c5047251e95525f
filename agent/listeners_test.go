package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tcpFixture = `  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 00000000:1F90 00000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 12345 1 0000000000000000 100 0 0 10 0
   1: 0100007F:0CEA 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 12346 1 0000000000000000 100 0 0 10 0
   2: 0100007F:0016 0100007F:D2F4 01 00000000:00000000 00:00000000 00000000     0        0 12347 1 0000000000000000 20 4 30 10 -1
`

const tcp6Fixture = `  sl  local_address                         rem_address                        st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 00000000000000000000000000000000:01BB 00000000000000000000000000000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 22345 1 0000000000000000 100 0 0 10 0
   1: 00000000000000000000000001000000:1538 00000000000000000000000000000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 22346 1 0000000000000000 100 0 0 10 0
`

func emptyTable() *listenerTable {
	return &listenerTable{
		ports:    make(map[int]bool),
		wildcard: make(map[int]bool),
		exact:    make(map[string]bool),
	}
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tcp")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadProcNetIPv4(t *testing.T) {
	table := emptyTable()
	require.NoError(t, table.readProcNet(writeFixture(t, tcpFixture), false))

	// 00000000:1F90 is a wildcard listener on 8080
	assert.True(t, table.wildcard[8080])
	assert.True(t, table.ports[8080])

	// 0100007F:0CEA is 127.0.0.1:3306
	assert.True(t, table.exact["127.0.0.1:3306"])
	assert.False(t, table.wildcard[3306])

	// state 01 is an established connection, not a listener
	assert.False(t, table.ports[22])
}

func TestReadProcNetIPv6(t *testing.T) {
	table := emptyTable()
	require.NoError(t, table.readProcNet(writeFixture(t, tcp6Fixture), true))

	// :: on 443 counts as a wildcard, a dual-stack listener serves IPv4 too
	assert.True(t, table.wildcard[443])

	// A specifically bound v6 socket only marks the port as taken
	assert.True(t, table.ports[5432])
	assert.False(t, table.wildcard[5432])
	assert.Empty(t, table.exact)
}

func TestCovers(t *testing.T) {
	table := emptyTable()
	require.NoError(t, table.readProcNet(writeFixture(t, tcpFixture), false))

	// A wildcard binding is satisfied by any listener on the port
	assert.True(t, table.covers("0.0.0.0", 8080))
	assert.True(t, table.covers("0.0.0.0", 3306))

	// A specific binding is satisfied by a wildcard socket
	assert.True(t, table.covers("192.168.1.5", 8080))

	// or by an exact match, but not by a different address
	assert.True(t, table.covers("127.0.0.1", 3306))
	assert.False(t, table.covers("192.168.1.5", 3306))

	assert.False(t, table.covers("127.0.0.1", 9999))
	assert.False(t, table.covers("0.0.0.0", 9999))
}

func TestHexToIPv4(t *testing.T) {
	ip := hexToIPv4("0100007F")
	require.NotNil(t, ip)
	assert.Equal(t, "127.0.0.1", ip.String())

	ip = hexToIPv4("0A01A8C0")
	require.NotNil(t, ip)
	assert.Equal(t, "192.168.1.10", ip.String())

	assert.Nil(t, hexToIPv4("7F"))
	assert.Nil(t, hexToIPv4("not-hex!"))
}

func TestIsZeroHex(t *testing.T) {
	assert.True(t, isZeroHex("00000000"))
	assert.True(t, isZeroHex("00000000000000000000000000000000"))
	assert.False(t, isZeroHex("0100007F"))
	assert.False(t, isZeroHex(""))
}
