package verify

import (
	"fmt"
	"strings"

	"commitverify/internal/models"

	"github.com/Masterminds/semver/v3"
)

// Matcher decides whether the commit reported by the service satisfies the
// expected one. A non-nil error always comes with false.
type Matcher func(expected, actual string) (bool, error)

// MatcherFor returns the matcher for a match mode.
func MatcherFor(mode string) (Matcher, error) {
	switch mode {
	case models.MatchModeExact, "":
		return matchExact, nil
	case models.MatchModePrefix:
		return matchPrefix, nil
	case models.MatchModeSemver:
		return matchSemver, nil
	default:
		return nil, fmt.Errorf("invalid match mode: %s", mode)
	}
}

func matchExact(expected, actual string) (bool, error) {
	return actual == expected, nil
}

// matchPrefix accepts abbreviated SHAs on either side, case-insensitively.
func matchPrefix(expected, actual string) (bool, error) {
	short, long := strings.ToLower(expected), strings.ToLower(actual)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) < models.MinPrefixLength {
		if short == long {
			return true, nil
		}
		return false, fmt.Errorf("commit %q is shorter than %d characters", short, models.MinPrefixLength)
	}
	return strings.HasPrefix(long, short), nil
}

// matchSemver treats expected as a constraint such as ">=1.4.0" or "~2.1".
func matchSemver(expected, actual string) (bool, error) {
	constraint, err := semver.NewConstraint(expected)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint %q: %w", expected, err)
	}
	v, err := semver.NewVersion(actual)
	if err != nil {
		return false, fmt.Errorf("reported commit %q is not a semantic version: %w", actual, err)
	}
	return constraint.Check(v), nil
}
