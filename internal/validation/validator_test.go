package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	v := New()
	assert.NotNil(t, v)
	assert.NotNil(t, v.structValidator)
	assert.NotNil(t, v.jsonldProcessor)
}

func TestValidateNode_Valid(t *testing.T) {
	v := New()

	validNode := []byte(`{
		"@context": "https://schema.org",
		"@type": "ComputerSystem",
		"@id": "node:01",
		"name": "vault-01",
		"fqdn": "vault-01.example.com",
		"port": 8443
	}`)

	result, err := v.ValidateNode(validNode)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateNode_IPv4FQDN(t *testing.T) {
	v := New()

	validNode := []byte(`{
		"@context": "https://schema.org",
		"@type": "ComputerSystem",
		"@id": "node:01",
		"name": "vault-01",
		"fqdn": "192.168.1.10",
		"port": 8443
	}`)

	result, err := v.ValidateNode(validNode)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateNode_MissingContext(t *testing.T) {
	v := New()

	invalidNode := []byte(`{
		"@type": "ComputerSystem",
		"@id": "node:01",
		"name": "vault-01",
		"fqdn": "vault-01.example.com",
		"port": 8443
	}`)

	result, err := v.ValidateNode(invalidNode)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)

	// Check that @context error is present
	hasContextError := false
	for _, e := range result.Errors {
		if e.Field == "@context" {
			hasContextError = true
			break
		}
	}
	assert.True(t, hasContextError, "Should have @context error")
}

func TestValidateNode_FieldErrors(t *testing.T) {
	v := New()

	tests := []struct {
		name          string
		json          string
		expectedField string
	}{
		{
			name: "missing name",
			json: `{
				"@context": "https://schema.org",
				"@type": "ComputerSystem",
				"@id": "node:01",
				"fqdn": "vault-01.example.com",
				"port": 8443
			}`,
			expectedField: "name",
		},
		{
			name: "name too long",
			json: `{
				"@context": "https://schema.org",
				"@type": "ComputerSystem",
				"@id": "node:01",
				"name": "` + strings.Repeat("x", 101) + `",
				"fqdn": "vault-01.example.com",
				"port": 8443
			}`,
			expectedField: "name",
		},
		{
			name: "missing fqdn",
			json: `{
				"@context": "https://schema.org",
				"@type": "ComputerSystem",
				"@id": "node:01",
				"name": "vault-01",
				"port": 8443
			}`,
			expectedField: "fqdn",
		},
		{
			name: "fqdn neither domain nor IPv4",
			json: `{
				"@context": "https://schema.org",
				"@type": "ComputerSystem",
				"@id": "node:01",
				"name": "vault-01",
				"fqdn": "not a hostname",
				"port": 8443
			}`,
			expectedField: "fqdn",
		},
		{
			name: "port zero",
			json: `{
				"@context": "https://schema.org",
				"@type": "ComputerSystem",
				"@id": "node:01",
				"name": "vault-01",
				"fqdn": "vault-01.example.com",
				"port": 0
			}`,
			expectedField: "port",
		},
		{
			name: "port too high",
			json: `{
				"@context": "https://schema.org",
				"@type": "ComputerSystem",
				"@id": "node:01",
				"name": "vault-01",
				"fqdn": "vault-01.example.com",
				"port": 70000
			}`,
			expectedField: "port",
		},
		{
			name: "wrong type",
			json: `{
				"@context": "https://schema.org",
				"@type": "Spaceship",
				"@id": "node:01",
				"name": "vault-01",
				"fqdn": "vault-01.example.com",
				"port": 8443
			}`,
			expectedField: "@type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.ValidateNode([]byte(tt.json))
			require.NoError(t, err)
			assert.False(t, result.Valid)

			hasError := false
			for _, e := range result.Errors {
				if e.Field == tt.expectedField {
					hasError = true
					break
				}
			}
			assert.True(t, hasError, "Should have error for field: %s", tt.expectedField)
		})
	}
}

func TestValidateAllocation_Valid(t *testing.T) {
	v := New()

	validAllocation := []byte(`{
		"@context": "https://schema.org",
		"@type": "PortMapping",
		"@id": "allocation:01",
		"nodeId": "node:01",
		"bindAddress": "0.0.0.0",
		"port": 25565
	}`)

	result, err := v.ValidateAllocation(validAllocation)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateAllocation_HostnameBindAddress(t *testing.T) {
	v := New()

	// Bind addresses are opaque strings: hostnames are legal.
	validAllocation := []byte(`{
		"@context": "https://schema.org",
		"@type": "PortMapping",
		"@id": "allocation:01",
		"nodeId": "node:01",
		"bindAddress": "game.internal",
		"port": 25565
	}`)

	result, err := v.ValidateAllocation(validAllocation)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateAllocation_FieldErrors(t *testing.T) {
	v := New()

	tests := []struct {
		name          string
		json          string
		expectedField string
	}{
		{
			name: "missing nodeId",
			json: `{
				"@context": "https://schema.org",
				"@type": "PortMapping",
				"@id": "allocation:01",
				"bindAddress": "0.0.0.0",
				"port": 25565
			}`,
			expectedField: "nodeId",
		},
		{
			name: "blank bindAddress",
			json: `{
				"@context": "https://schema.org",
				"@type": "PortMapping",
				"@id": "allocation:01",
				"nodeId": "node:01",
				"bindAddress": "   ",
				"port": 25565
			}`,
			expectedField: "bindAddress",
		},
		{
			name: "missing port",
			json: `{
				"@context": "https://schema.org",
				"@type": "PortMapping",
				"@id": "allocation:01",
				"nodeId": "node:01",
				"bindAddress": "0.0.0.0"
			}`,
			expectedField: "port",
		},
		{
			name: "port above range",
			json: `{
				"@context": "https://schema.org",
				"@type": "PortMapping",
				"@id": "allocation:01",
				"nodeId": "node:01",
				"bindAddress": "0.0.0.0",
				"port": 65536
			}`,
			expectedField: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.ValidateAllocation([]byte(tt.json))
			require.NoError(t, err)
			assert.False(t, result.Valid)

			hasError := false
			for _, e := range result.Errors {
				if e.Field == tt.expectedField {
					hasError = true
					break
				}
			}
			assert.True(t, hasError, "Should have error for field: %s", tt.expectedField)
		})
	}
}

func TestValidateWorkload_Valid(t *testing.T) {
	v := New()

	validWorkload := []byte(`{
		"@context": "https://schema.org",
		"@type": "SoftwareApplication",
		"@id": "workload:01",
		"name": "game-server",
		"status": "active",
		"nodeId": "node:01",
		"bindings": [{"bindAddress": "0.0.0.0", "port": 25565}]
	}`)

	result, err := v.ValidateWorkload(validWorkload)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateWorkload_InvalidStatus(t *testing.T) {
	v := New()

	invalidWorkload := []byte(`{
		"@context": "https://schema.org",
		"@type": "SoftwareApplication",
		"@id": "workload:01",
		"name": "game-server",
		"status": "sleeping",
		"nodeId": "node:01"
	}`)

	result, err := v.ValidateWorkload(invalidWorkload)
	require.NoError(t, err)
	assert.False(t, result.Valid)

	hasStatusError := false
	for _, e := range result.Errors {
		if e.Field == "status" {
			hasStatusError = true
			assert.Equal(t, "sleeping", e.Value)
			break
		}
	}
	assert.True(t, hasStatusError)
}

func TestValidateWorkload_InvalidBindings(t *testing.T) {
	v := New()

	tests := []struct {
		name        string
		json        string
		expectError string
	}{
		{
			name: "binding port too high",
			json: `{
				"@context": "https://schema.org",
				"@type": "SoftwareApplication",
				"@id": "workload:01",
				"name": "game-server",
				"nodeId": "node:01",
				"bindings": [{"bindAddress": "0.0.0.0", "port": 99999}]
			}`,
			expectError: "bindings[0].port",
		},
		{
			name: "binding missing bind address",
			json: `{
				"@context": "https://schema.org",
				"@type": "SoftwareApplication",
				"@id": "workload:01",
				"name": "game-server",
				"nodeId": "node:01",
				"bindings": [{"port": 25565}]
			}`,
			expectError: "bindings[0].bindAddress",
		},
		{
			name: "negative memory reservation",
			json: `{
				"@context": "https://schema.org",
				"@type": "SoftwareApplication",
				"@id": "workload:01",
				"name": "game-server",
				"nodeId": "node:01",
				"memoryMiB": -512
			}`,
			expectError: "memoryMiB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.ValidateWorkload([]byte(tt.json))
			require.NoError(t, err)
			assert.False(t, result.Valid)

			hasError := false
			for _, e := range result.Errors {
				if e.Field == tt.expectError {
					hasError = true
					break
				}
			}
			assert.True(t, hasError, "Should have error for: %s", tt.expectError)
		})
	}
}

func TestValidateNode_InvalidJSON(t *testing.T) {
	v := New()

	invalidJSON := []byte(`{invalid json}`)

	result, err := v.ValidateNode(invalidJSON)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
	assert.Equal(t, "document", result.Errors[0].Field)
}

func TestValidateAllocation_InvalidJSON(t *testing.T) {
	v := New()

	invalidJSON := []byte(`{invalid json}`)

	result, err := v.ValidateAllocation(invalidJSON)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
	assert.Equal(t, "document", result.Errors[0].Field)
}
