package utils

import (
	"errors"
	"regexp"
)

func EnumValidator(allowed ...string) func(string) error {
	set := map[string]struct{}{}
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(s string) error {
		if _, ok := set[s]; ok {
			return nil
		}
		return errors.New("validation failed")
	}
}

var ymd = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DateValidator accepts empty strings and YYYY-MM-DD dates.
func DateValidator(s string) error {
	if s == "" || ymd.MatchString(s) {
		return nil
	}
	return errors.New("date must be YYYY-MM-DD")
}
