package consumer

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidFact is wrapped by every fact validation failure.
var ErrInvalidFact = errors.New("invalid consumer fact")

// FactValidator checks a single fact before it is persisted.
type FactValidator interface {
	Validate(key, value string) error
}

const (
	maxFactKeyLength   = 255
	maxFactValueLength = 255
)

// Facts whose values must be non-negative integers.
var integerFacts = []string{
	"cpu.core(s)_per_socket",
	"cpu.cpu_socket(s)",
	"cpu.cpu(s)",
	"lscpu.socket(s)",
	"lscpu.cpu(s)",
	"memory.memtotal",
}

// DefaultFactValidator bounds key and value lengths and requires integer
// values for the CPU and memory facts used by subscription rules.
type DefaultFactValidator struct {
	validate     *validator.Validate
	integerFacts map[string]struct{}
}

// NewDefaultFactValidator returns the standard fact validator. Extra keys
// are added to the set of facts that must hold integers.
func NewDefaultFactValidator(extraIntegerFacts ...string) *DefaultFactValidator {
	ints := make(map[string]struct{}, len(integerFacts)+len(extraIntegerFacts))
	for _, k := range integerFacts {
		ints[k] = struct{}{}
	}
	for _, k := range extraIntegerFacts {
		ints[k] = struct{}{}
	}
	return &DefaultFactValidator{
		validate:     validator.New(),
		integerFacts: ints,
	}
}

func (v *DefaultFactValidator) Validate(key, value string) error {
	if err := v.validate.Var(key, fmt.Sprintf("required,max=%d", maxFactKeyLength)); err != nil {
		return fmt.Errorf("%w: key %q: %v", ErrInvalidFact, key, err)
	}
	if err := v.validate.Var(value, fmt.Sprintf("max=%d", maxFactValueLength)); err != nil {
		return fmt.Errorf("%w: %s: value too long", ErrInvalidFact, key)
	}
	if _, ok := v.integerFacts[key]; ok {
		if err := v.validate.Var(value, "omitempty,number"); err != nil {
			return fmt.Errorf("%w: %s must be a non-negative integer, got %q", ErrInvalidFact, key, value)
		}
	}
	return nil
}

// ValidateFacts runs fv over every fact and returns the first failure.
func ValidateFacts(fv FactValidator, facts map[string]string) error {
	if fv == nil {
		return nil
	}
	for k, val := range facts {
		if err := fv.Validate(k, val); err != nil {
			return err
		}
	}
	return nil
}
