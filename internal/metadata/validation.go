package metadata

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/anvil-platform/autoconfig/internal/semver"
)

// Validate checks that m is usable by the sorter and condition evaluator.
func (m Metadata) Validate() error {
	notSelf := validation.NotIn(m.Name).Error("must not reference the candidate itself")
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.Before, validation.Each(validation.Required, notSelf)),
		validation.Field(&m.After, validation.Each(validation.Required, notSelf)),
		validation.Field(&m.Conditions),
	)
}

func (c Conditions) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.OnLibrary),
		validation.Field(&c.OnMissingLibrary, validation.Each(validation.Required)),
		validation.Field(&c.OnProperty),
	)
}

func (r LibraryRequirement) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Version, validation.By(isConstraint)),
	)
}

func (p PropertyCondition) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
	)
}

func isConstraint(value interface{}) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	_, err := semver.ParseConstraint(raw)
	return err
}
