package plan

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/portico-hosting/portico/internal/pool"
	"github.com/portico-hosting/portico/internal/validation"
	"github.com/portico-hosting/portico/models"
)

// ParseResult contains the parsed plan and any validation findings. Errors
// make the plan unusable; warnings do not block application.
type ParseResult struct {
	// Definition is the parsed plan with defaults applied
	Definition *models.PlanDefinition `json:"definition,omitempty"`

	// Warnings contains non-fatal validation warnings
	Warnings []string `json:"warnings"`

	// Errors contains fatal validation errors
	Errors []string `json:"errors"`
}

// Parse decodes and validates a plan without a running service, for offline
// checks of a plan file.
func Parse(data []byte) (*ParseResult, error) {
	s := &Service{validate: validator.New()}
	return s.Parse(data)
}

// Parse decodes a YAML plan and validates it without touching storage. The
// result always carries the findings; the error is non-nil when the plan
// cannot be applied.
func (s *Service) Parse(data []byte) (*ParseResult, error) {
	result := &ParseResult{
		Warnings: []string{},
		Errors:   []string{},
	}

	var def models.PlanDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("invalid YAML: %v", err))
		return result, fmt.Errorf("failed to decode plan: %w", err)
	}
	result.Definition = &def

	s.validateDefinition(&def, result)

	if len(result.Errors) > 0 {
		return result, fmt.Errorf("plan validation failed with %d error(s)", len(result.Errors))
	}
	return result, nil
}

// validateDefinition checks the plan structure and applies defaults.
func (s *Service) validateDefinition(def *models.PlanDefinition, result *ParseResult) {
	if strings.TrimSpace(def.Name) == "" {
		result.Errors = append(result.Errors, "plan name is required")
	}

	if len(def.Nodes) == 0 {
		result.Warnings = append(result.Warnings, "plan contains no nodes")
	}

	seen := make(map[string]bool)
	for i := range def.Nodes {
		node := &def.Nodes[i]
		s.validateNode(node, result)

		key := strings.ToLower(node.Name)
		if node.Name != "" && seen[key] {
			result.Errors = append(result.Errors, fmt.Sprintf("node %s listed twice", node.Name))
		}
		seen[key] = true
	}
}

// validateNode checks one node entry, defaulting the daemon port.
func (s *Service) validateNode(node *models.PlanNode, result *ParseResult) {
	if node.Name == "" {
		result.Errors = append(result.Errors, "node name is required")
	}
	if len(node.Name) > validation.MaxNameLength {
		result.Errors = append(result.Errors,
			fmt.Sprintf("node %s: name exceeds %d characters", node.Name, validation.MaxNameLength))
	}

	if node.FQDN == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("node %s: fqdn is required", node.Name))
	} else if s.validate.Var(node.FQDN, "fqdn|ip4_addr") != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("node %s: fqdn %q is not a fully qualified domain name or IPv4 address", node.Name, node.FQDN))
	}

	if node.Port == 0 {
		node.Port = DefaultNodePort
	}
	if node.Port < pool.MinPort || node.Port > pool.MaxPort {
		result.Errors = append(result.Errors,
			fmt.Sprintf("node %s: port %d out of range %d-%d", node.Name, node.Port, pool.MinPort, pool.MaxPort))
	}

	for j := range node.Pools {
		s.validatePool(node, j, result)
	}
	s.checkOverlaps(node, result)
}

// validatePool checks one allocation range entry.
func (s *Service) validatePool(node *models.PlanNode, index int, result *ParseResult) {
	p := &node.Pools[index]
	target := fmt.Sprintf("node %s pool %d", node.Name, index)

	if strings.TrimSpace(p.BindAddress) == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: bind address is required", target))
	}

	if p.Start < pool.MinPort || p.Start > pool.MaxPort || p.End < pool.MinPort || p.End > pool.MaxPort {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: range %d-%d out of bounds %d-%d", target, p.Start, p.End, pool.MinPort, pool.MaxPort))
	} else if p.Start > p.End {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: range start %d after end %d", target, p.Start, p.End))
	}
}

// checkOverlaps warns about ranges that intersect on the same bind address.
// Overlapping ranges still apply cleanly because creation is idempotent, but
// they usually indicate a copy-paste slip.
func (s *Service) checkOverlaps(node *models.PlanNode, result *ParseResult) {
	for i := 0; i < len(node.Pools); i++ {
		for j := i + 1; j < len(node.Pools); j++ {
			a, b := &node.Pools[i], &node.Pools[j]
			if a.BindAddress != b.BindAddress {
				continue
			}
			if a.Start <= b.End && b.Start <= a.End {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("node %s: ranges %d-%d and %d-%d overlap on %s",
						node.Name, a.Start, a.End, b.Start, b.End, a.BindAddress))
			}
		}
	}
}
