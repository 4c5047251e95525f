package plan

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portico-hosting/portico/internal/config"
	"github.com/portico-hosting/portico/internal/notify"
	"github.com/portico-hosting/portico/internal/pool"
	"github.com/portico-hosting/portico/internal/probe"
	"github.com/portico-hosting/portico/internal/registry"
	"github.com/portico-hosting/portico/internal/storage"
	"github.com/portico-hosting/portico/models"
)

const testPlanYAML = `name: minecraft-eu
description: EU game nodes
nodes:
  - name: node-eu-01
    fqdn: n1.eu.example.com
    port: 8443
    pools:
      - bindAddress: "0.0.0.0"
        start: 25565
        end: 25567
  - name: node-eu-02
    fqdn: 192.0.2.10
    datacenter: eu-central
    pools:
      - bindAddress: "0.0.0.0"
        start: 25565
        end: 25569
        alias: game
`

func newTestService(t *testing.T) (*Service, *storage.Storage) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.Path = filepath.Join(t.TempDir(), "portico.db")

	store, err := storage.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	notices := notify.NewQueue(time.Minute, 20)
	reg := registry.New(store, pool.NewManager(store), probe.New(500*time.Millisecond), notices)

	svc, err := NewService(reg, store, notices, log.Default())
	require.NoError(t, err)
	return svc, store
}

func resultFor(record *models.PlanRecord, action, targetPart string) *models.PlanResult {
	for i := range record.Results {
		res := &record.Results[i]
		if res.Action == action && strings.Contains(res.Target, targetPart) {
			return res
		}
	}
	return nil
}

func TestParseValidPlan(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Parse([]byte(testPlanYAML))
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	require.NotNil(t, result.Definition)
	assert.Equal(t, "minecraft-eu", result.Definition.Name)
	require.Len(t, result.Definition.Nodes, 2)

	// The second node omits the port and gets the default.
	assert.Equal(t, 8443, result.Definition.Nodes[0].Port)
	assert.Equal(t, DefaultNodePort, result.Definition.Nodes[1].Port)
}

func TestParseInvalidYAML(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Parse([]byte("{invalid"))
	require.Error(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "invalid YAML")
}

func TestParseReportsAllFindings(t *testing.T) {
	svc, _ := newTestService(t)

	bad := `nodes:
  - name: alpha
    fqdn: not a hostname
    port: 99999
    pools:
      - bindAddress: ""
        start: 25600
        end: 25565
  - name: alpha
    fqdn: n2.example.com
`
	result, err := svc.Parse([]byte(bad))
	require.Error(t, err)

	joined := strings.Join(result.Errors, "; ")
	assert.Contains(t, joined, "plan name is required")
	assert.Contains(t, joined, "not a fully qualified domain name")
	assert.Contains(t, joined, "port 99999 out of range")
	assert.Contains(t, joined, "bind address is required")
	assert.Contains(t, joined, "range start 25600 after end 25565")
	assert.Contains(t, joined, "node alpha listed twice")
}

func TestParseWarnsOnOverlap(t *testing.T) {
	svc, _ := newTestService(t)

	overlapping := `name: overlap
nodes:
  - name: alpha
    fqdn: n1.example.com
    pools:
      - bindAddress: "0.0.0.0"
        start: 25565
        end: 25600
      - bindAddress: "0.0.0.0"
        start: 25590
        end: 25610
`
	result, err := svc.Parse([]byte(overlapping))
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "overlap")
}

func TestApplyCreatesNodesAndRanges(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	parsed, err := svc.Parse([]byte(testPlanYAML))
	require.NoError(t, err)

	record, err := svc.Apply(ctx, parsed.Definition)
	require.NoError(t, err)

	assert.Equal(t, 4, record.Total)
	assert.Equal(t, 4, record.Succeeded)
	assert.Equal(t, 0, record.Skipped)
	assert.Equal(t, 0, record.Failed)

	nodes, err := store.ListNodes(nil)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	rangeResult := resultFor(record, "range", "node-eu-02")
	require.NotNil(t, rangeResult)
	assert.Equal(t, StatusCreated, rangeResult.Status)
	assert.Equal(t, 5, rangeResult.Created)

	// The record is persisted for later audit.
	stored, err := store.GetPlanRecord(record.ID)
	require.NoError(t, err)
	assert.Equal(t, "minecraft-eu", stored.Name)
	assert.Len(t, stored.Results, 4)
}

func TestApplyIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	parsed, err := svc.Parse([]byte(testPlanYAML))
	require.NoError(t, err)

	_, err = svc.Apply(ctx, parsed.Definition)
	require.NoError(t, err)

	second, err := svc.Apply(ctx, parsed.Definition)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Succeeded)
	assert.Equal(t, 4, second.Skipped)
	assert.Equal(t, 0, second.Failed)

	rangeResult := resultFor(second, "range", "node-eu-01")
	require.NotNil(t, rangeResult)
	assert.Equal(t, StatusSkipped, rangeResult.Status)
	assert.Equal(t, 0, rangeResult.Created)
}

func TestApplyFillsWidenedRange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	parsed, err := svc.Parse([]byte(testPlanYAML))
	require.NoError(t, err)
	_, err = svc.Apply(ctx, parsed.Definition)
	require.NoError(t, err)

	widened := strings.Replace(testPlanYAML, "end: 25567", "end: 25569", 1)
	parsed, err = svc.Parse([]byte(widened))
	require.NoError(t, err)

	record, err := svc.Apply(ctx, parsed.Definition)
	require.NoError(t, err)

	rangeResult := resultFor(record, "range", "node-eu-01")
	require.NotNil(t, rangeResult)
	assert.Equal(t, StatusCreated, rangeResult.Status)
	assert.Equal(t, 2, rangeResult.Created)
}

func TestApplyRecordsStepFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Built directly instead of parsed, so the out-of-bounds range reaches
	// the pool manager and fails there.
	def := &models.PlanDefinition{
		Name: "bad-range",
		Nodes: []models.PlanNode{
			{
				Name: "node-eu-01",
				FQDN: "n1.eu.example.com",
				Port: 8443,
				Pools: []models.PlanPool{
					{BindAddress: "0.0.0.0", Start: 70000, End: 70005},
					{BindAddress: "0.0.0.0", Start: 25565, End: 25566},
				},
			},
		},
	}

	record, err := svc.Apply(ctx, def)
	require.NoError(t, err)

	assert.Equal(t, 2, record.Succeeded)
	assert.Equal(t, 1, record.Failed)

	failed := resultFor(record, "range", "70000-70005")
	require.NotNil(t, failed)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.NotEmpty(t, failed.Error)

	// The failure does not stop the following range.
	ok := resultFor(record, "range", "25565-25566")
	require.NotNil(t, ok)
	assert.Equal(t, StatusCreated, ok.Status)
	assert.Equal(t, 2, ok.Created)
}

func TestApplyMatchesNodeNamesCaseInsensitively(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	parsed, err := svc.Parse([]byte(testPlanYAML))
	require.NoError(t, err)
	_, err = svc.Apply(ctx, parsed.Definition)
	require.NoError(t, err)

	upper := strings.Replace(testPlanYAML, "name: node-eu-01", "name: NODE-EU-01", 1)
	parsed, err = svc.Parse([]byte(upper))
	require.NoError(t, err)

	record, err := svc.Apply(ctx, parsed.Definition)
	require.NoError(t, err)

	nodeResult := resultFor(record, "node", "NODE-EU-01")
	require.NotNil(t, nodeResult)
	assert.Equal(t, StatusSkipped, nodeResult.Status)
}
