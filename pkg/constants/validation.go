package constants

import "github.com/go-playground/validator/v10"

// Validate is the shared struct validator for decoded payloads.
var Validate = validator.New(validator.WithRequiredStructEnabled())
