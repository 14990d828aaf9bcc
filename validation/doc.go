// Package validation checks configuration structs against their
// `validate` struct tags using go-playground/validator and reports
// failures as INVALID_CONFIG errors naming each offending field.
//
//	type Config struct {
//	    Driver string `mapstructure:"driver" validate:"required,oneof=sqlite"`
//	}
//
//	if err := validation.Validate(&cfg); err != nil { ... }
package validation
