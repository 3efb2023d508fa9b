package controllers

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	autoconfigv1alpha1 "github.com/anvil-platform/autoconfig/api/v1alpha1"
)

const (
	PlanConditionCandidatesLoaded = "CandidatesLoaded"
	PlanConditionOrdered          = "Ordered"

	PlanPhaseReady = "Ready"
	PlanPhaseError = "Error"
)

func setPlanCondition(plan *autoconfigv1alpha1.ConfigurationPlan, condition metav1.Condition) {
	if plan == nil {
		return
	}
	condition.ObservedGeneration = plan.Generation
	meta.SetStatusCondition(&plan.Status.Conditions, condition)
}

func candidatesLoadedMessage(loaded, skipped int) string {
	if skipped == 0 {
		return fmt.Sprintf("%d auto-configurations loaded", loaded)
	}
	return fmt.Sprintf("%d auto-configurations loaded, %d skipped as invalid", loaded, skipped)
}

func importedMessage(imports, unmatched int) string {
	if imports == 0 {
		return "No auto-configurations imported"
	}
	return fmt.Sprintf("%d auto-configurations imported, %d did not match", imports, unmatched)
}
