package config

import (
	// blank import for embeds
	_ "embed"
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/xeipuuv/gojsonschema"
	"sigs.k8s.io/yaml"

	"github.com/replicate/dockgen/pkg/errors"
	"github.com/replicate/dockgen/pkg/global"
)

//go:embed data/config_schema_v1.0.json
var schemaV1 []byte

const (
	jsonschemaOneOf = "number_one_of"
	jsonschemaAnyOf = "number_any_of"
)

// ValidateOption configures validation behavior.
type ValidateOption func(*validateOptions)

type validateOptions struct {
	strictDeprecations bool
}

// WithStrictDeprecations treats deprecation warnings as errors.
func WithStrictDeprecations() ValidateOption {
	return func(o *validateOptions) {
		o.strictDeprecations = true
	}
}

// ValidateYAML checks raw dockgen.yaml contents against the JSON schema.
func ValidateYAML(contents []byte) error {
	j, err := yaml.YAMLToJSON(contents)
	if err != nil {
		return &SchemaError{Field: global.ConfigFilename, Message: err.Error()}
	}
	if string(j) == "null" {
		j = []byte("{}")
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaV1)
	dataLoader := gojsonschema.NewBytesLoader(j)

	validationResult, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return &SchemaError{Field: "(root)", Message: err.Error()}
	}

	if !validationResult.Valid() {
		return getMostSpecificSchemaError(validationResult.Errors())
	}

	return nil
}

// ValidateConfigFile checks that a ConfigFile can be turned into a Dockerfile.
// Returns all validation errors and deprecation warnings.
// Does not mutate the input.
func ValidateConfigFile(cfg *ConfigFile, opts ...ValidateOption) *ValidationResult {
	options := &validateOptions{}
	for _, opt := range opts {
		opt(options)
	}

	result := NewValidationResult()

	validateVersion(cfg, result)
	validateFrom(cfg, result)
	validateSteps("steps", cfg.Steps, result)
	validateSteps("on_build", cfg.OnBuild, result)

	checkDeprecatedFields(cfg, result)

	// If strict deprecations, convert warnings to errors
	if options.strictDeprecations && result.HasWarnings() {
		for _, w := range result.Warnings {
			result.AddError(&w)
		}
		result.Warnings = nil
	}

	return result
}

func validateVersion(cfg *ConfigFile, result *ValidationResult) {
	if cfg.Version == nil {
		return
	}
	v, err := version.NewVersion(*cfg.Version)
	if err != nil {
		result.AddError(&ValidationError{
			Field: "version",
			Value: *cfg.Version,
			Err:   err,
		})
		return
	}
	supported, err := version.NewConstraint(global.SupportedConfigVersions)
	if err != nil {
		panic(err)
	}
	if !supported.Check(v) {
		result.AddError(&ValidationError{
			Field: "version",
			Value: *cfg.Version,
			Err:   errors.ErrorUnsupportedConfigVersion,
		})
	}
}

func validateFrom(cfg *ConfigFile, result *ValidationResult) {
	if cfg.From == nil || strings.TrimSpace(*cfg.From) == "" {
		result.AddError(&ValidationError{
			Field:   "from",
			Message: "a base image is required",
		})
		return
	}
	if _, err := fromInstruction(*cfg.From); err != nil {
		result.AddError(err)
	}
}

func validateSteps(field string, steps []StepFile, result *ValidationResult) {
	for i := range steps {
		if _, err := stepInstruction(fmt.Sprintf("%s[%d]", field, i), &steps[i]); err != nil {
			result.AddError(err)
		}
	}
}

// checkDeprecatedFields checks for deprecated fields and adds warnings.
func checkDeprecatedFields(cfg *ConfigFile, result *ValidationResult) {
	if cfg.Maintainer != nil {
		result.AddWarning(DeprecationWarning{
			Field:       "maintainer",
			Replacement: "label: {maintainer: ...}",
			Message:     "MAINTAINER is deprecated, use a label instead",
		})
	}
}

// getMostSpecificSchemaError extracts the most specific error from schema validation.
func getMostSpecificSchemaError(errors []gojsonschema.ResultError) *SchemaError {
	if len(errors) == 0 {
		return &SchemaError{Field: "(unknown)", Message: "unknown schema error"}
	}

	mostSpecific := 0
	for i, err := range errors {
		if schemaErrorSpecificity(err) > schemaErrorSpecificity(errors[mostSpecific]) {
			mostSpecific = i
		} else if schemaErrorSpecificity(err) == schemaErrorSpecificity(errors[mostSpecific]) {
			// Invalid type errors win in a tie-breaker
			if err.Type() == "invalid_type" && errors[mostSpecific].Type() != "invalid_type" {
				mostSpecific = i
			}
		}
	}

	err := errors[mostSpecific]
	field := err.Field()
	if field == "(root)" {
		field = global.ConfigFilename
	}

	return &SchemaError{
		Field:   field,
		Message: getSchemaErrorDescription(err, errors, mostSpecific),
	}
}

// getSchemaErrorDescription generates a human-readable description for a schema error.
func getSchemaErrorDescription(err gojsonschema.ResultError, allErrors []gojsonschema.ResultError, index int) string {
	switch err.Type() {
	case "invalid_type":
		if expectedType, ok := err.Details()["expected"].(string); ok {
			return fmt.Sprintf("must be a %s", humanReadableSchemaType(expectedType))
		}
	case jsonschemaOneOf, jsonschemaAnyOf:
		if index+1 < len(allErrors) {
			return allErrors[index+1].Description()
		}
	}
	return err.Description()
}

// humanReadableSchemaType converts JSON schema type names to human-readable names.
func humanReadableSchemaType(definition string) string {
	if len(definition) > 0 && definition[0] == '[' {
		allTypes := strings.Split(definition[1:len(definition)-1], ",")
		for i, t := range allTypes {
			allTypes[i] = humanReadableSchemaType(strings.TrimSpace(t))
		}
		return fmt.Sprintf("%s or %s",
			strings.Join(allTypes[0:len(allTypes)-1], ", "),
			allTypes[len(allTypes)-1])
	}
	switch definition {
	case "object":
		return "mapping"
	case "array":
		return "list"
	default:
		return definition
	}
}

// schemaErrorSpecificity returns how specific a schema error is based on field depth.
func schemaErrorSpecificity(err gojsonschema.ResultError) int {
	return len(strings.Split(err.Field(), "."))
}
