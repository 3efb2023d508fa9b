package metadata

import (
	"slices"

	autoconfigv1alpha1 "github.com/anvil-platform/autoconfig/api/v1alpha1"
)

// FromAutoConfiguration converts the custom resource into candidate metadata.
func FromAutoConfiguration(ac *autoconfigv1alpha1.AutoConfiguration) Metadata {
	m := Metadata{
		Name:   ac.Name,
		Order:  ac.Spec.Order,
		Before: slices.Clone(ac.Spec.Before),
		After:  slices.Clone(ac.Spec.After),
	}
	for _, lib := range ac.Spec.Conditions.OnLibrary {
		m.Conditions.OnLibrary = append(m.Conditions.OnLibrary, LibraryRequirement{Name: lib.Name, Version: lib.Version})
	}
	m.Conditions.OnMissingLibrary = slices.Clone(ac.Spec.Conditions.OnMissingLibrary)
	for _, p := range ac.Spec.Conditions.OnProperty {
		m.Conditions.OnProperty = append(m.Conditions.OnProperty, PropertyCondition{
			Name:           p.Name,
			HavingValue:    p.HavingValue,
			MatchIfMissing: p.MatchIfMissing,
		})
	}
	return m
}

// CatalogFromList builds a Catalog from a list of custom resources. Items that
// fail validation are skipped and returned by name so callers can surface them.
func CatalogFromList(list *autoconfigv1alpha1.AutoConfigurationList) (*Catalog, map[string]error) {
	catalog := NewCatalog()
	var invalid map[string]error
	for i := range list.Items {
		m := FromAutoConfiguration(&list.Items[i])
		if err := m.Validate(); err != nil {
			if invalid == nil {
				invalid = make(map[string]error)
			}
			invalid[m.Name] = err
			continue
		}
		catalog.Register(m)
	}
	return catalog, invalid
}
