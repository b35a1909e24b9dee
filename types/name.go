package types

import (
	"fmt"
	"strings"
)

// ValidateName checks that name is a valid GraphQL name that is not reserved
// for introspection.
//
// http://spec.graphql.org/draft/#Name
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return fmt.Errorf("name %q contains invalid character %q at position %d", name, r, i)
		}
	}
	if strings.HasPrefix(name, "__") {
		return fmt.Errorf("name %q must not begin with \"__\", reserved for introspection types", name)
	}
	return nil
}
