package config

import (
	"github.com/Masterminds/semver/v3"

	bberrors "github.com/sofmeright/bandbox/src/errors"
	"github.com/sofmeright/bandbox/src/version"
)

func validConstraint(s string) error {
	if _, err := semver.NewConstraint(s); err != nil {
		return bberrors.Wrapf(err, bberrors.ErrConfigInvalid, "requires %q is not a version constraint", s)
	}
	return nil
}

// CheckRequires verifies that the running binary satisfies the config's
// requires constraint. Development builds satisfy every constraint.
func (c *Config) CheckRequires() error {
	if c.Requires == "" {
		return nil
	}
	v, ok := version.Semver()
	if !ok {
		return nil
	}
	return checkConstraint(c.Requires, v)
}

func checkConstraint(constraint string, v *semver.Version) error {
	cons, err := semver.NewConstraint(constraint)
	if err != nil {
		return bberrors.Wrapf(err, bberrors.ErrConfigInvalid, "requires %q is not a version constraint", constraint)
	}
	if ok, errs := cons.Validate(v); !ok {
		e := bberrors.Newf(bberrors.ErrConfigInvalid, "bandbox %s does not satisfy requires %q", v, constraint)
		if len(errs) > 0 {
			e.Wrapped = errs[0]
		}
		return e
	}
	return nil
}
