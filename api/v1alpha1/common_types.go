package v1alpha1

// ObjectRef points at an object in the same namespace.
type ObjectRef struct {
	Name string `json:"name"`
}

// LibraryRequirement matches when the named library is present and, if Version is
// set, its version satisfies the constraint (e.g. ">=2.13 <3").
type LibraryRequirement struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// PropertyCondition matches on an environment property.
type PropertyCondition struct {
	Name           string `json:"name"`
	HavingValue    string `json:"havingValue,omitempty"`
	MatchIfMissing bool   `json:"matchIfMissing,omitempty"`
}

// ImportConditions gate whether an auto-configuration is imported at all.
type ImportConditions struct {
	OnLibrary        []LibraryRequirement `json:"onLibrary,omitempty"`
	OnMissingLibrary []string             `json:"onMissingLibrary,omitempty"`
	OnProperty       []PropertyCondition  `json:"onProperty,omitempty"`
}
