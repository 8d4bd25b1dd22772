// Package validation checks configuration structs and caller-supplied values
// before any expensive work starts.
//
// Struct tag validation (go-playground/validator) is used for configuration
// sections; field names in messages follow the mapstructure key so that they
// match what an operator writes in config.yml. The fluent Validator collects
// errors for values that cannot be expressed as tags, such as time windows.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Device string `mapstructure:"device" validate:"oneof=cpu cuda"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    NonNegative("start", w.Start).
//	    Less("start", w.Start, "end", w.End).
//	    Validate()
//
// Both return *errors.AppError with code INVALID_INPUT.
package validation
