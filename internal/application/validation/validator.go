// Package validation checks candidate craft documents against the craft JSON schema.
package validation

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/craftshop/core/internal/domain/entities"
	"github.com/craftshop/core/internal/ports"
)

//go:embed craft.schema.json
var craftSchema []byte

// fieldOrder decides which failure is reported when several fields are invalid
var fieldOrder = map[string]int{
	"name":        0,
	"image":       1,
	"description": 2,
	"supplies":    3,
	"id":          4,
}

// ValidationError describes the first failing field of a candidate craft
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SchemaLoadError represents errors loading or evaluating the schema itself
type SchemaLoadError struct {
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("craft schema: %s: %v", e.Message, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// CraftValidator validates candidate craft documents
type CraftValidator struct {
	schema *gojsonschema.Schema
}

// NewCraftValidator compiles the embedded craft schema
func NewCraftValidator() (*CraftValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(craftSchema))
	if err != nil {
		return nil, &SchemaLoadError{Message: "failed to compile", Cause: err}
	}
	return &CraftValidator{schema: schema}, nil
}

// Validate checks doc and returns a *ValidationError naming the first failing
// field, or nil when doc is a valid craft.
func (v *CraftValidator) Validate(doc map[string]interface{}) error {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &SchemaLoadError{Message: "failed to evaluate document", Cause: err}
	}

	if result.Valid() {
		return nil
	}

	failures := make([]*ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		failures = append(failures, describe(desc))
	}

	sort.SliceStable(failures, func(i, j int) bool {
		return fieldRank(failures[i].Field) < fieldRank(failures[j].Field)
	})

	return failures[0]
}

// Input validates doc and converts it into a typed creation input
func (v *CraftValidator) Input(doc map[string]interface{}) (*ports.CreateCraftInput, error) {
	if err := v.Validate(doc); err != nil {
		return nil, err
	}

	input := &ports.CreateCraftInput{
		Name:        doc["name"].(string),
		Image:       doc["image"].(string),
		Description: doc["description"].(string),
		Supplies:    []string{},
	}

	switch supplies := doc["supplies"].(type) {
	case []string:
		input.Supplies = append(input.Supplies, supplies...)
	case []interface{}:
		for _, s := range supplies {
			input.Supplies = append(input.Supplies, s.(string))
		}
	}

	return input, nil
}

// ValidateCraft checks a fully formed craft, as read from a seed file
func (v *CraftValidator) ValidateCraft(craft entities.Craft) error {
	doc := map[string]interface{}{
		"name":        craft.Name,
		"image":       craft.Image,
		"description": craft.Description,
	}
	if craft.Supplies != nil {
		doc["supplies"] = craft.Supplies
	}
	if craft.ID != nil {
		doc["id"] = *craft.ID
	}
	return v.Validate(doc)
}

func describe(desc gojsonschema.ResultError) *ValidationError {
	field := desc.Field()
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			field = prop
		}
	}

	label := quoteField(field)

	var msg string
	switch desc.Type() {
	case "required":
		msg = label + " is required"
	case "invalid_type":
		expected, _ := desc.Details()["expected"].(string)
		msg = fmt.Sprintf("%s must be %s", label, article(expected))
	case "string_gte":
		msg = label + " is not allowed to be empty"
	default:
		msg = fmt.Sprintf("%s %s", label, desc.Description())
	}

	return &ValidationError{Field: field, Message: msg}
}

// quoteField renders "supplies.1" as "supplies[1]"
func quoteField(field string) string {
	parts := strings.Split(field, ".")
	var sb strings.Builder
	for i, p := range parts {
		if _, err := strconv.Atoi(p); err == nil && i > 0 {
			sb.WriteString("[" + p + "]")
			continue
		}
		if i > 0 {
			sb.WriteString(".")
		}
		sb.WriteString(p)
	}
	return strconv.Quote(sb.String())
}

func fieldRank(field string) int {
	root := strings.SplitN(field, ".", 2)[0]
	if rank, ok := fieldOrder[root]; ok {
		return rank
	}
	return len(fieldOrder)
}

func article(expected string) string {
	switch expected {
	case "array", "integer", "object":
		return "an " + expected
	case "":
		return "a valid value"
	default:
		return "a " + expected
	}
}
