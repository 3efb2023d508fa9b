package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ConfigurationPlan asks the controller to select and order auto-configurations
// against an environment described by a ConfigMap.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=plan
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Imports",type=integer,JSONPath=`.status.importCount`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type ConfigurationPlan struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ConfigurationPlanSpec   `json:"spec"`
	Status ConfigurationPlanStatus `json:"status,omitempty"`
}

type ConfigurationPlanSpec struct {
	// Candidates restricts selection to these names. Empty means every
	// AutoConfiguration in the namespace.
	Candidates []string `json:"candidates,omitempty"`
	Exclusions []string `json:"exclusions,omitempty"`
	// EnvironmentRef names a ConfigMap. Keys prefixed with "library." declare
	// present libraries (value is the version); other keys are properties.
	EnvironmentRef *ObjectRef `json:"environmentRef,omitempty"`
}

// UnmatchedCandidate records why a candidate was not imported.
type UnmatchedCandidate struct {
	Name    string   `json:"name"`
	Reasons []string `json:"reasons,omitempty"`
}

type ConfigurationPlanStatus struct {
	ObservedGeneration int64                `json:"observedGeneration,omitempty"`
	Phase              string               `json:"phase,omitempty"`
	Message            string               `json:"message,omitempty"`
	ImportCount        int32                `json:"importCount,omitempty"`
	Imports            []string             `json:"imports,omitempty"`
	Excluded           []string             `json:"excluded,omitempty"`
	Unmatched          []UnmatchedCandidate `json:"unmatched,omitempty"`
	Conditions         []metav1.Condition   `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
type ConfigurationPlanList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ConfigurationPlan `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ConfigurationPlan{}, &ConfigurationPlanList{})
}
