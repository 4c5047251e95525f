// Package validation provides JSON-LD document validation for Portico models.
//
// This package validates both the structure and semantic correctness of JSON-LD
// documents representing nodes, allocations, and workloads. It uses:
//   - go-playground/validator for field-level validation
//   - json-gold for JSON-LD semantic validation
//
// # Validation Process
//
// 1. JSON parsing - Ensures valid JSON syntax
// 2. Field validation - Checks required fields and constraints
// 3. JSON-LD validation - Verifies semantic correctness
// 4. Schema.org compliance - Validates against Schema.org vocabulary
//
// # Usage Example
//
//	validator := validation.New()
//	result, err := validator.ValidateNode(jsonData)
//	if err != nil {
//	    // Handle error
//	}
//	if !result.Valid {
//	    // Handle validation errors
//	    for _, err := range result.Errors {
//	        fmt.Printf("%s: %s\n", err.Field, err.Message)
//	    }
//	}
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/piprate/json-gold/ld"

	"github.com/portico-hosting/portico/models"
)

// MaxNameLength caps node names.
const MaxNameLength = 100

// Validator handles JSON-LD document validation for Portico models.
// It combines field validation with JSON-LD semantic validation to ensure
// both syntactic and semantic correctness of documents.
type Validator struct {
	// structValidator validates field constraints (FQDN and IP formats)
	structValidator *validator.Validate

	// jsonldProcessor validates JSON-LD semantic correctness
	jsonldProcessor *ld.JsonLdProcessor
}

// ValidationError represents a single validation error with field-level details.
// It includes the field name, error message, and optionally the invalid value.
type ValidationError struct {
	// Field is the name of the field that failed validation
	Field string `json:"field"`

	// Message describes why the validation failed
	Message string `json:"message"`

	// Value is the invalid value that caused the error (optional)
	Value interface{} `json:"value,omitempty"`
}

// ValidationResult represents the complete result of a validation operation.
// It indicates whether validation passed and includes any errors found.
type ValidationResult struct {
	// Valid is true if validation passed, false otherwise
	Valid bool `json:"valid"`

	// Errors contains all validation errors found (empty if Valid is true)
	Errors []ValidationError `json:"errors,omitempty"`
}

// New creates a new Validator instance with field and JSON-LD validators.
// The validator is ready to validate nodes, allocations, and workloads.
func New() *Validator {
	return &Validator{
		structValidator: validator.New(),
		jsonldProcessor: ld.NewJsonLdProcessor(),
	}
}

// ValidateNode validates a node JSON-LD document
func (v *Validator) ValidateNode(data []byte) (*ValidationResult, error) {
	var node models.Node

	// Parse JSON
	if err := json.Unmarshal(data, &node); err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{
				{
					Field:   "document",
					Message: fmt.Sprintf("Invalid JSON: %v", err),
				},
			},
		}, nil
	}

	// Validate JSON-LD structure
	jsonldErrors := v.validateJSONLD(data)

	// Validate node-specific fields
	nodeErrors := v.validateNodeFields(&node)

	// Combine errors
	allErrors := append(jsonldErrors, nodeErrors...)

	return &ValidationResult{
		Valid:  len(allErrors) == 0,
		Errors: allErrors,
	}, nil
}

// ValidateAllocation validates an allocation JSON-LD document
func (v *Validator) ValidateAllocation(data []byte) (*ValidationResult, error) {
	var alloc models.Allocation

	// Parse JSON
	if err := json.Unmarshal(data, &alloc); err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{
				{
					Field:   "document",
					Message: fmt.Sprintf("Invalid JSON: %v", err),
				},
			},
		}, nil
	}

	// Validate JSON-LD structure
	jsonldErrors := v.validateJSONLD(data)

	// Validate allocation-specific fields
	allocErrors := v.validateAllocationFields(&alloc)

	// Combine errors
	allErrors := append(jsonldErrors, allocErrors...)

	return &ValidationResult{
		Valid:  len(allErrors) == 0,
		Errors: allErrors,
	}, nil
}

// ValidateWorkload validates a workload JSON-LD document
func (v *Validator) ValidateWorkload(data []byte) (*ValidationResult, error) {
	var workload models.Workload

	// Parse JSON
	if err := json.Unmarshal(data, &workload); err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{
				{
					Field:   "document",
					Message: fmt.Sprintf("Invalid JSON: %v", err),
				},
			},
		}, nil
	}

	// Validate JSON-LD structure
	jsonldErrors := v.validateJSONLD(data)

	// Validate workload-specific fields
	workloadErrors := v.validateWorkloadFields(&workload)

	// Combine errors
	allErrors := append(jsonldErrors, workloadErrors...)

	return &ValidationResult{
		Valid:  len(allErrors) == 0,
		Errors: allErrors,
	}, nil
}

// CheckNode validates node fields on an already decoded document. Unlike
// ValidateNode it skips the JSON-LD envelope checks, so create and update
// paths can run it before the @id is minted.
func (v *Validator) CheckNode(node *models.Node) *ValidationResult {
	errs := v.validateNodeFields(node)
	return &ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

// CheckWorkload validates workload fields on an already decoded document.
func (v *Validator) CheckWorkload(workload *models.Workload) *ValidationResult {
	errs := v.validateWorkloadFields(workload)
	return &ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

// validateJSONLD validates JSON-LD structure using json-gold
func (v *Validator) validateJSONLD(data []byte) []ValidationError {
	var errors []ValidationError

	// Parse as generic JSON
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		errors = append(errors, ValidationError{
			Field:   "document",
			Message: fmt.Sprintf("Invalid JSON: %v", err),
		})
		return errors
	}

	// Check @context
	if docMap, ok := doc.(map[string]interface{}); ok {
		// Validate @context exists
		if _, hasContext := docMap["@context"]; !hasContext {
			errors = append(errors, ValidationError{
				Field:   "@context",
				Message: "Missing @context field (required for JSON-LD)",
			})
		}

		// Validate @type exists
		if _, hasType := docMap["@type"]; !hasType {
			errors = append(errors, ValidationError{
				Field:   "@type",
				Message: "Missing @type field (required for JSON-LD)",
			})
		}

		// Validate @id exists
		if _, hasID := docMap["@id"]; !hasID {
			errors = append(errors, ValidationError{
				Field:   "@id",
				Message: "Missing @id field (required for JSON-LD)",
			})
		}

		// Try to expand the JSON-LD to validate it's well-formed
		options := ld.NewJsonLdOptions("")
		_, err := v.jsonldProcessor.Expand(doc, options)
		if err != nil {
			errors = append(errors, ValidationError{
				Field:   "document",
				Message: fmt.Sprintf("Invalid JSON-LD structure: %v", err),
			})
		}
	}

	return errors
}

// validateNodeFields validates node-specific business logic
func (v *Validator) validateNodeFields(node *models.Node) []ValidationError {
	var errors []ValidationError

	// Required fields
	if node.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: "Name is required",
		})
	}

	if len(node.Name) > MaxNameLength {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("Name must be at most %d characters", MaxNameLength),
			Value:   node.Name,
		})
	}

	if node.FQDN == "" {
		errors = append(errors, ValidationError{
			Field:   "fqdn",
			Message: "FQDN is required",
		})
	} else if v.structValidator.Var(node.FQDN, "fqdn|ip4_addr") != nil {
		errors = append(errors, ValidationError{
			Field:   "fqdn",
			Message: "FQDN must be a fully qualified domain name or an IPv4 address",
			Value:   node.FQDN,
		})
	}

	if node.Port < 1 || node.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "port",
			Message: "Port must be between 1 and 65535",
			Value:   node.Port,
		})
	}

	// Validate @type
	if node.Type != "" && node.Type != models.NodeType {
		errors = append(errors, ValidationError{
			Field:   "@type",
			Message: fmt.Sprintf("Type must be '%s'", models.NodeType),
			Value:   node.Type,
		})
	}

	return errors
}

// validateAllocationFields validates allocation-specific business logic.
// The bind address is deliberately only checked for non-emptiness: hostnames,
// wildcard addresses, and IPs are all legal endpoint prefixes.
func (v *Validator) validateAllocationFields(alloc *models.Allocation) []ValidationError {
	var errors []ValidationError

	if alloc.NodeID == "" {
		errors = append(errors, ValidationError{
			Field:   "nodeId",
			Message: "NodeID is required (must reference a node)",
		})
	}

	if strings.TrimSpace(alloc.BindAddress) == "" {
		errors = append(errors, ValidationError{
			Field:   "bindAddress",
			Message: "Bind address is required",
		})
	}

	if alloc.Port < 1 || alloc.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "port",
			Message: "Port must be between 1 and 65535",
			Value:   alloc.Port,
		})
	}

	// Validate @type
	if alloc.Type != "" && alloc.Type != models.AllocationType {
		errors = append(errors, ValidationError{
			Field:   "@type",
			Message: fmt.Sprintf("Type must be '%s'", models.AllocationType),
			Value:   alloc.Type,
		})
	}

	return errors
}

// validateWorkloadFields validates workload-specific business logic
func (v *Validator) validateWorkloadFields(workload *models.Workload) []ValidationError {
	var errors []ValidationError

	// Required fields
	if workload.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: "Name is required",
		})
	}

	if workload.NodeID == "" {
		errors = append(errors, ValidationError{
			Field:   "nodeId",
			Message: "NodeID is required (must reference a node)",
		})
	}

	// Validate @type
	if workload.Type != "" && workload.Type != models.WorkloadType {
		errors = append(errors, ValidationError{
			Field:   "@type",
			Message: fmt.Sprintf("Type must be '%s'", models.WorkloadType),
			Value:   workload.Type,
		})
	}

	// Validate status
	validStatuses := map[string]bool{
		models.WorkloadStatusActive:   true,
		models.WorkloadStatusInactive: true,
	}

	if workload.Status != "" && !validStatuses[workload.Status] {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("Invalid status: must be one of: %s",
				strings.Join([]string{models.WorkloadStatusActive, models.WorkloadStatusInactive}, ", ")),
			Value: workload.Status,
		})
	}

	// Validate bindings
	for i, binding := range workload.Bindings {
		if strings.TrimSpace(binding.BindAddress) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("bindings[%d].bindAddress", i),
				Message: "Bind address is required",
			})
		}

		if binding.Port < 1 || binding.Port > 65535 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("bindings[%d].port", i),
				Message: "Port must be between 1 and 65535",
				Value:   binding.Port,
			})
		}
	}

	// Validate resource reservations
	if workload.CPUPercent < 0 {
		errors = append(errors, ValidationError{
			Field:   "cpuPercent",
			Message: "CPU reservation cannot be negative",
			Value:   workload.CPUPercent,
		})
	}

	if workload.MemoryMiB < 0 {
		errors = append(errors, ValidationError{
			Field:   "memoryMiB",
			Message: "Memory reservation cannot be negative",
			Value:   workload.MemoryMiB,
		})
	}

	if workload.DiskMiB < 0 {
		errors = append(errors, ValidationError{
			Field:   "diskMiB",
			Message: "Disk reservation cannot be negative",
			Value:   workload.DiskMiB,
		})
	}

	return errors
}
