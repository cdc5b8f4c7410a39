// Package config defines the viper-backed configuration surface for the
// summarizer core, following the teacher's pkg/config Load[T]/Validatable
// pattern.
package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Validatable is implemented by every config section so Load can enforce
// struct tags after unmarshaling.
type Validatable interface {
	Validate() error
}

var validate = validator.New()

func validateConfig(v any) error {
	return validate.Struct(v)
}

// Load unmarshals the current viper state into T and validates it.
func Load[T Validatable]() (T, error) {
	var out T
	if err := viper.Unmarshal(&out); err != nil {
		return out, err
	}
	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}
