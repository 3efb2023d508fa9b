package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ConfigurationPlan) DeepCopyInto(out *ConfigurationPlan) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopy copies the receiver, creating a new ConfigurationPlan.
func (in *ConfigurationPlan) DeepCopy() *ConfigurationPlan {
	if in == nil {
		return nil
	}
	out := new(ConfigurationPlan)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *ConfigurationPlan) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ConfigurationPlanList) DeepCopyInto(out *ConfigurationPlanList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]ConfigurationPlan, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy copies the receiver, creating a new ConfigurationPlanList.
func (in *ConfigurationPlanList) DeepCopy() *ConfigurationPlanList {
	if in == nil {
		return nil
	}
	out := new(ConfigurationPlanList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *ConfigurationPlanList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ConfigurationPlanSpec) DeepCopyInto(out *ConfigurationPlanSpec) {
	*out = *in
	if in.Candidates != nil {
		out.Candidates = make([]string, len(in.Candidates))
		copy(out.Candidates, in.Candidates)
	}
	if in.Exclusions != nil {
		out.Exclusions = make([]string, len(in.Exclusions))
		copy(out.Exclusions, in.Exclusions)
	}
	if in.EnvironmentRef != nil {
		in, out := &in.EnvironmentRef, &out.EnvironmentRef
		*out = new(ObjectRef)
		**out = **in
	}
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *UnmatchedCandidate) DeepCopyInto(out *UnmatchedCandidate) {
	*out = *in
	if in.Reasons != nil {
		out.Reasons = make([]string, len(in.Reasons))
		copy(out.Reasons, in.Reasons)
	}
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ConfigurationPlanStatus) DeepCopyInto(out *ConfigurationPlanStatus) {
	*out = *in
	if in.Imports != nil {
		out.Imports = make([]string, len(in.Imports))
		copy(out.Imports, in.Imports)
	}
	if in.Excluded != nil {
		out.Excluded = make([]string, len(in.Excluded))
		copy(out.Excluded, in.Excluded)
	}
	if in.Unmatched != nil {
		out.Unmatched = make([]UnmatchedCandidate, len(in.Unmatched))
		for i := range in.Unmatched {
			in.Unmatched[i].DeepCopyInto(&out.Unmatched[i])
		}
	}
	if in.Conditions != nil {
		out.Conditions = make([]metav1.Condition, len(in.Conditions))
		for i := range in.Conditions {
			in.Conditions[i].DeepCopyInto(&out.Conditions[i])
		}
	}
}
