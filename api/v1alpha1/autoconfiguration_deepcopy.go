package v1alpha1

import (
	"k8s.io/apimachinery/pkg/runtime"
)

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *AutoConfiguration) DeepCopyInto(out *AutoConfiguration) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	out.Status = in.Status
}

// DeepCopy copies the receiver, creating a new AutoConfiguration.
func (in *AutoConfiguration) DeepCopy() *AutoConfiguration {
	if in == nil {
		return nil
	}
	out := new(AutoConfiguration)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *AutoConfiguration) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *AutoConfigurationList) DeepCopyInto(out *AutoConfigurationList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]AutoConfiguration, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy copies the receiver, creating a new AutoConfigurationList.
func (in *AutoConfigurationList) DeepCopy() *AutoConfigurationList {
	if in == nil {
		return nil
	}
	out := new(AutoConfigurationList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *AutoConfigurationList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *AutoConfigurationSpec) DeepCopyInto(out *AutoConfigurationSpec) {
	*out = *in
	if in.Before != nil {
		out.Before = make([]string, len(in.Before))
		copy(out.Before, in.Before)
	}
	if in.After != nil {
		out.After = make([]string, len(in.After))
		copy(out.After, in.After)
	}
	in.Conditions.DeepCopyInto(&out.Conditions)
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ImportConditions) DeepCopyInto(out *ImportConditions) {
	*out = *in
	if in.OnLibrary != nil {
		out.OnLibrary = make([]LibraryRequirement, len(in.OnLibrary))
		copy(out.OnLibrary, in.OnLibrary)
	}
	if in.OnMissingLibrary != nil {
		out.OnMissingLibrary = make([]string, len(in.OnMissingLibrary))
		copy(out.OnMissingLibrary, in.OnMissingLibrary)
	}
	if in.OnProperty != nil {
		out.OnProperty = make([]PropertyCondition, len(in.OnProperty))
		copy(out.OnProperty, in.OnProperty)
	}
}
