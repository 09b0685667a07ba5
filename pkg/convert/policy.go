package convert

import (
	"errors"
	"fmt"

	"github.com/cyclopcam/logs"
)

// ErrUnknownCategory is returned under PolicyError when a source class has no mapping
var ErrUnknownCategory = errors.New("unknown category")

// CategoryPolicy decides what happens to source objects whose class is not in the target vocabulary
type CategoryPolicy int

const (
	PolicyDrop  CategoryPolicy = iota // Count and drop
	PolicyWarn                        // Count, log, and drop
	PolicyError                       // Abort the run
)

func ParseCategoryPolicy(s string) (CategoryPolicy, error) {
	switch s {
	case "", "drop":
		return PolicyDrop, nil
	case "warn":
		return PolicyWarn, nil
	case "error":
		return PolicyError, nil
	}
	return PolicyDrop, fmt.Errorf("Invalid unknown-category policy '%v' (expected drop, warn, or error)", s)
}

func (p CategoryPolicy) String() string {
	switch p {
	case PolicyWarn:
		return "warn"
	case PolicyError:
		return "error"
	}
	return "drop"
}

// Unknown applies the policy to one unmapped object. 'where' identifies the object for logs.
func (p CategoryPolicy) Unknown(log logs.Log, report *Report, class, where string) error {
	switch p {
	case PolicyError:
		return fmt.Errorf("%w '%v' in %v", ErrUnknownCategory, class, where)
	case PolicyWarn:
		log.Warnf("Dropping object of unknown class '%v' in %v", class, where)
	}
	report.Skip(SkipUnknownCategory)
	return nil
}
