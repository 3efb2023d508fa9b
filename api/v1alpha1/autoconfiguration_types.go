package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// AutoConfiguration declares one importable configuration unit: its priority, its
// ordering relative to other units, and the conditions under which it applies.
// The unit's name is metadata.name.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=ac
// +kubebuilder:printcolumn:name="Order",type=integer,JSONPath=`.spec.order`
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type AutoConfiguration struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   AutoConfigurationSpec   `json:"spec"`
	Status AutoConfigurationStatus `json:"status,omitempty"`
}

type AutoConfigurationSpec struct {
	// Order is the default priority. Lower values are imported first.
	Order int32 `json:"order,omitempty"`
	// Before lists auto-configurations this one must be imported before.
	Before []string `json:"before,omitempty"`
	// After lists auto-configurations this one must be imported after.
	After      []string         `json:"after,omitempty"`
	Conditions ImportConditions `json:"conditions,omitempty"`
}

type AutoConfigurationStatus struct {
	Phase   string `json:"phase,omitempty"`
	Message string `json:"message,omitempty"`
}

// +kubebuilder:object:root=true
type AutoConfigurationList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []AutoConfiguration `json:"items"`
}

func init() {
	SchemeBuilder.Register(&AutoConfiguration{}, &AutoConfigurationList{})
}
