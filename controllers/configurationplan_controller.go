package controllers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	autoconfigv1alpha1 "github.com/anvil-platform/autoconfig/api/v1alpha1"
	"github.com/anvil-platform/autoconfig/internal/condition"
	"github.com/anvil-platform/autoconfig/internal/failureanalysis"
	"github.com/anvil-platform/autoconfig/internal/metadata"
	"github.com/anvil-platform/autoconfig/internal/metrics"
	"github.com/anvil-platform/autoconfig/internal/selector"
	"github.com/anvil-platform/autoconfig/internal/sorter"
)

const (
	controllerName = "ConfigurationPlan"

	environmentRefIndex = ".spec.environmentRef.name"

	reasonCycleDetected     = "CycleDetected"
	reasonInvalidExclusions = "InvalidExclusions"
	reasonSelectError       = "SelectError"
)

// ConfigurationPlanReconciler selects and orders the AutoConfigurations of a
// namespace for each ConfigurationPlan and writes the result to its status.
//
// RBAC:
// +kubebuilder:rbac:groups=autoconfig.platform,resources=configurationplans,verbs=get;list;watch
// +kubebuilder:rbac:groups=autoconfig.platform,resources=configurationplans/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=autoconfig.platform,resources=autoconfigurations,verbs=get;list;watch
// +kubebuilder:rbac:groups="",resources=configmaps,verbs=get;list;watch
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch;update
type ConfigurationPlanReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder
	Metrics  *metrics.Recorder
	// Clientset, when set, also loads candidates from ConfigMaps labelled
	// autoconfig.platform/metadata=true in the plan's namespace. AutoConfiguration
	// resources override ConfigMap entries of the same name.
	Clientset kubernetes.Interface
	// Listeners are notified of every import selection.
	Listeners []selector.Listener
}

func (r *ConfigurationPlanReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	autoconfigControllerReconcileTotal.WithLabelValues(controllerName).Inc()

	logger := log.FromContext(ctx).WithValues(
		"controller", controllerName,
		"namespace", req.Namespace,
		"plan", req.Name,
	)
	ctx = log.IntoContext(ctx, logger)

	// 1) Load ConfigurationPlan
	var plan autoconfigv1alpha1.ConfigurationPlan
	if err := r.Get(ctx, req.NamespacedName, &plan); err != nil {
		if client.IgnoreNotFound(err) == nil {
			configurationPlanImports.DeleteLabelValues(req.Namespace, req.Name)
			return ctrl.Result{}, nil
		}
		autoconfigControllerReconcileErrorTotal.WithLabelValues(controllerName).Inc()
		return ctrl.Result{}, err
	}
	logger.Info("reconciling plan")

	// 2) Load the environment
	env := condition.Environment{}
	if ref := plan.Spec.EnvironmentRef; ref != nil && ref.Name != "" {
		var cm corev1.ConfigMap
		if err := r.Get(ctx, types.NamespacedName{Namespace: req.Namespace, Name: ref.Name}, &cm); err != nil {
			if apierrors.IsNotFound(err) {
				msg := fmt.Sprintf("Environment ConfigMap %q not found", ref.Name)
				if perr := r.patchPlanStatus(ctx, &plan, PlanPhaseError, msg, nil, nil,
					metav1.Condition{
						Type:    PlanConditionCandidatesLoaded,
						Status:  metav1.ConditionFalse,
						Reason:  "EnvironmentNotFound",
						Message: msg,
					},
					metav1.Condition{
						Type:    PlanConditionOrdered,
						Status:  metav1.ConditionFalse,
						Reason:  "EnvironmentNotReady",
						Message: "Cannot select auto-configurations until the environment is available",
					},
				); perr != nil {
					logger.Error(perr, "failed to patch plan status")
				}
				logger.Info("environment configmap not found; marking plan error", "configMap", ref.Name)
				r.recordEventf(&plan, corev1.EventTypeWarning, "EnvironmentNotFound", "%s", msg)
				return ctrl.Result{}, nil
			}
			logger.Error(err, "failed to load environment configmap", "configMap", ref.Name)
			autoconfigControllerReconcileErrorTotal.WithLabelValues(controllerName).Inc()
			return ctrl.Result{}, err
		}
		env = condition.EnvironmentFromConfigMap(&cm)
	}

	// 3) Load candidate metadata
	catalog := metadata.NewCatalog()
	if r.Clientset != nil {
		src := &metadata.ConfigMapSource{Client: r.Clientset, Namespace: req.Namespace}
		fromConfigMaps, err := src.Load(ctx)
		r.Metrics.ObserveMetadataLoad("configmap", err)
		if err != nil {
			if errors.Is(err, metadata.ErrInvalidConfigMap) {
				msg := fmt.Sprintf("Metadata ConfigMaps are invalid: %v", err)
				if perr := r.patchPlanStatus(ctx, &plan, PlanPhaseError, msg, nil, nil,
					metav1.Condition{
						Type:    PlanConditionCandidatesLoaded,
						Status:  metav1.ConditionFalse,
						Reason:  "InvalidMetadata",
						Message: msg,
					},
					metav1.Condition{
						Type:    PlanConditionOrdered,
						Status:  metav1.ConditionFalse,
						Reason:  "CandidatesNotLoaded",
						Message: "Cannot select auto-configurations until the metadata ConfigMaps are fixed",
					},
				); perr != nil {
					logger.Error(perr, "failed to patch plan status")
				}
				logger.Info("invalid metadata configmap; marking plan error", "error", err.Error())
				r.recordEventf(&plan, corev1.EventTypeWarning, "InvalidMetadata", "%s", msg)
				configurationPlanImports.WithLabelValues(req.Namespace, req.Name).Set(0)
				return ctrl.Result{}, nil
			}
			logger.Error(err, "failed to load metadata configmaps")
			autoconfigControllerReconcileErrorTotal.WithLabelValues(controllerName).Inc()
			return ctrl.Result{}, err
		}
		catalog.Merge(fromConfigMaps)
	}

	var list autoconfigv1alpha1.AutoConfigurationList
	if err := r.List(ctx, &list, client.InNamespace(req.Namespace)); err != nil {
		logger.Error(err, "failed to list autoconfigurations")
		r.Metrics.ObserveMetadataLoad("crd", err)
		autoconfigControllerReconcileErrorTotal.WithLabelValues(controllerName).Inc()
		return ctrl.Result{}, err
	}
	fromCRDs, invalid := metadata.CatalogFromList(&list)
	r.Metrics.ObserveMetadataLoad("crd", nil)
	catalog.Merge(fromCRDs)
	for _, name := range sets.List(sets.KeySet(invalid)) {
		logger.Info("skipping invalid autoconfiguration", "autoConfiguration", name, "error", invalid[name].Error())
		r.recordEventf(&plan, corev1.EventTypeWarning, "InvalidAutoConfiguration", "AutoConfiguration %q skipped: %v", name, invalid[name])
	}
	loaded := metav1.Condition{
		Type:    PlanConditionCandidatesLoaded,
		Status:  metav1.ConditionTrue,
		Reason:  "CandidatesLoaded",
		Message: candidatesLoadedMessage(catalog.Len(), len(invalid)),
	}

	// 4) Select and order
	opts := []selector.Option{selector.WithRecorder(r.Metrics)}
	for _, l := range r.Listeners {
		opts = append(opts, selector.WithListener(l))
	}
	start := time.Now()
	result, err := selector.New(catalog, opts...).Select(ctx, selector.Request{
		Candidates: plan.Spec.Candidates,
		Exclusions: plan.Spec.Exclusions,
	}, env)
	configurationPlanResolutionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		reason := selectFailureReason(err)
		msg := failureMessage(err)
		if perr := r.patchPlanStatus(ctx, &plan, PlanPhaseError, msg, nil, nil,
			loaded,
			metav1.Condition{
				Type:    PlanConditionOrdered,
				Status:  metav1.ConditionFalse,
				Reason:  reason,
				Message: msg,
			},
		); perr != nil {
			logger.Error(perr, "failed to patch plan status")
		}
		logger.Info("selection failed; marking plan error", "reason", reason, "error", err.Error())
		r.recordEventf(&plan, corev1.EventTypeWarning, reason, "%s", msg)
		configurationPlanImports.WithLabelValues(req.Namespace, req.Name).Set(0)
		return ctrl.Result{}, nil
	}

	logger.Info(
		"plan resolved",
		"candidateCount", catalog.Len(),
		"importCount", len(result.Imports),
		"excludedCount", len(result.Exclusions),
	)
	configurationPlanImports.WithLabelValues(req.Namespace, req.Name).Set(float64(len(result.Imports)))

	// 5) Publish
	changed := plan.Status.Phase != PlanPhaseReady || !slices.Equal(plan.Status.Imports, result.Imports)
	unmatched := unmatchedCandidates(result.Report)
	message := importedMessage(len(result.Imports), len(unmatched))
	if err := r.patchPlanStatus(ctx, &plan, PlanPhaseReady, message, &result, unmatched,
		loaded,
		metav1.Condition{
			Type:    PlanConditionOrdered,
			Status:  metav1.ConditionTrue,
			Reason:  "Ordered",
			Message: message,
		},
	); err != nil {
		logger.Error(err, "failed to patch plan status")
		autoconfigControllerReconcileErrorTotal.WithLabelValues(controllerName).Inc()
		return ctrl.Result{}, err
	}
	if changed {
		r.recordEventf(&plan, corev1.EventTypeNormal, "Ordered", "Imports: %s", summarizeImports(result.Imports))
	}
	return ctrl.Result{}, nil
}

func (r *ConfigurationPlanReconciler) recordEventf(obj client.Object, eventType, reason, messageFmt string, args ...any) {
	if r.Recorder == nil || obj == nil {
		return
	}
	r.Recorder.Eventf(obj, eventType, reason, messageFmt, args...)
}

func (r *ConfigurationPlanReconciler) SetupWithManager(mgr ctrl.Manager) error {
	if err := mgr.GetFieldIndexer().IndexField(context.Background(), &autoconfigv1alpha1.ConfigurationPlan{}, environmentRefIndex, indexEnvironmentRef); err != nil {
		return err
	}

	return ctrl.NewControllerManagedBy(mgr).
		For(&autoconfigv1alpha1.ConfigurationPlan{}).
		// Any AutoConfiguration change can alter the selection of every plan in
		// its namespace.
		Watches(&autoconfigv1alpha1.AutoConfiguration{}, enqueuePlansInNamespace(mgr.GetClient())).
		Watches(&corev1.ConfigMap{}, enqueuePlansForConfigMap(mgr.GetClient())).
		Complete(r)
}

func indexEnvironmentRef(obj client.Object) []string {
	plan, ok := obj.(*autoconfigv1alpha1.ConfigurationPlan)
	if !ok || plan.Spec.EnvironmentRef == nil || plan.Spec.EnvironmentRef.Name == "" {
		return nil
	}
	return []string{plan.Spec.EnvironmentRef.Name}
}

func enqueuePlansInNamespace(c client.Client) handler.EventHandler {
	return handler.EnqueueRequestsFromMapFunc(func(ctx context.Context, obj client.Object) []reconcile.Request {
		var plans autoconfigv1alpha1.ConfigurationPlanList
		if err := c.List(ctx, &plans, client.InNamespace(obj.GetNamespace())); err != nil {
			return nil
		}
		return planRequests(plans.Items)
	})
}

// enqueuePlansForConfigMap enqueues every plan in the namespace for a metadata
// ConfigMap, and otherwise the plans whose environmentRef names the ConfigMap.
func enqueuePlansForConfigMap(c client.Client) handler.EventHandler {
	return handler.EnqueueRequestsFromMapFunc(func(ctx context.Context, obj client.Object) []reconcile.Request {
		return plansForConfigMap(ctx, c, obj)
	})
}

func plansForConfigMap(ctx context.Context, c client.Client, obj client.Object) []reconcile.Request {
	opts := []client.ListOption{client.InNamespace(obj.GetNamespace())}
	if obj.GetLabels()[metadata.MetadataLabel] != "true" {
		opts = append(opts, client.MatchingFields{environmentRefIndex: obj.GetName()})
	}
	var plans autoconfigv1alpha1.ConfigurationPlanList
	if err := c.List(ctx, &plans, opts...); err != nil {
		return nil
	}
	return planRequests(plans.Items)
}

func planRequests(plans []autoconfigv1alpha1.ConfigurationPlan) []reconcile.Request {
	out := make([]reconcile.Request, 0, len(plans))
	for i := range plans {
		p := &plans[i]
		out = append(out, reconcile.Request{NamespacedName: types.NamespacedName{Namespace: p.Namespace, Name: p.Name}})
	}
	return out
}

// patchPlanStatus sets phase, message and conditions. A nil result clears the
// imports so a failed plan never advertises a stale order.
func (r *ConfigurationPlanReconciler) patchPlanStatus(
	ctx context.Context,
	plan *autoconfigv1alpha1.ConfigurationPlan,
	phase, message string,
	result *selector.Result,
	unmatched []autoconfigv1alpha1.UnmatchedCandidate,
	conds ...metav1.Condition,
) error {
	before := plan.DeepCopy()
	plan.Status.ObservedGeneration = plan.Generation
	plan.Status.Phase = phase
	plan.Status.Message = message
	plan.Status.Imports = nil
	plan.Status.ImportCount = 0
	plan.Status.Excluded = nil
	plan.Status.Unmatched = nil
	if result != nil {
		plan.Status.Imports = slices.Clone(result.Imports)
		plan.Status.ImportCount = int32(len(result.Imports))
		plan.Status.Excluded = slices.Clone(result.Exclusions)
		plan.Status.Unmatched = unmatched
	}
	for _, c := range conds {
		setPlanCondition(plan, c)
	}
	return r.Status().Patch(ctx, plan, client.MergeFrom(before))
}

func unmatchedCandidates(report *condition.Report) []autoconfigv1alpha1.UnmatchedCandidate {
	if report == nil {
		return nil
	}
	var out []autoconfigv1alpha1.UnmatchedCandidate
	for _, name := range report.Unmatched() {
		o, _ := report.Outcome(name)
		out = append(out, autoconfigv1alpha1.UnmatchedCandidate{Name: name, Reasons: slices.Clone(o.Messages)})
	}
	return out
}

func selectFailureReason(err error) string {
	var invalid *selector.InvalidExclusionsError
	switch {
	case errors.Is(err, sorter.ErrCycle):
		return reasonCycleDetected
	case errors.As(err, &invalid):
		return reasonInvalidExclusions
	default:
		return reasonSelectError
	}
}

func failureMessage(err error) string {
	a, ok := failureanalysis.Analyze(err)
	if !ok {
		return err.Error()
	}
	msg := strings.Join(strings.Fields(a.Description), " ")
	if a.Action != "" {
		msg += " Action: " + a.Action
	}
	return msg
}

func summarizeImports(imports []string) string {
	if len(imports) == 0 {
		return "none"
	}
	const max = 8
	if len(imports) <= max {
		return strings.Join(imports, ", ")
	}
	return fmt.Sprintf("%s ...and %d more", strings.Join(imports[:max], ", "), len(imports)-max)
}
