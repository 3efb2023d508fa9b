package controllers

import (
	"context"
	"errors"
	"strings"
	"testing"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/anvil-platform/autoconfig/api/v1alpha1"
	"github.com/anvil-platform/autoconfig/internal/metadata"
	"github.com/anvil-platform/autoconfig/internal/sorter"
)

const testNamespace = "autoconfig-demo"

func testScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		t.Fatalf("AddToScheme(clientgo): %v", err)
	}
	if err := v1alpha1.AddToScheme(scheme); err != nil {
		t.Fatalf("AddToScheme: %v", err)
	}
	return scheme
}

func autoConfiguration(name string, spec v1alpha1.AutoConfigurationSpec) *v1alpha1.AutoConfiguration {
	return &v1alpha1.AutoConfiguration{
		TypeMeta:   metav1.TypeMeta{APIVersion: "autoconfig.platform/v1alpha1", Kind: "AutoConfiguration"},
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: testNamespace},
		Spec:       spec,
	}
}

func configurationPlan(spec v1alpha1.ConfigurationPlanSpec) *v1alpha1.ConfigurationPlan {
	return &v1alpha1.ConfigurationPlan{
		TypeMeta:   metav1.TypeMeta{APIVersion: "autoconfig.platform/v1alpha1", Kind: "ConfigurationPlan"},
		ObjectMeta: metav1.ObjectMeta{Name: "app", Namespace: testNamespace, Generation: 3},
		Spec:       spec,
	}
}

func reconcilePlan(t *testing.T, objs ...client.Object) (*v1alpha1.ConfigurationPlan, *record.FakeRecorder) {
	t.Helper()
	return reconcilePlanWithClientset(t, nil, objs...)
}

// reconcilePlanWithClientset also serves metadata ConfigMaps through cs.
func reconcilePlanWithClientset(t *testing.T, cs kubernetes.Interface, objs ...client.Object) (*v1alpha1.ConfigurationPlan, *record.FakeRecorder) {
	t.Helper()
	ctx := context.Background()
	scheme := testScheme(t)

	var plan *v1alpha1.ConfigurationPlan
	for _, o := range objs {
		if p, ok := o.(*v1alpha1.ConfigurationPlan); ok {
			plan = p
		}
	}
	if plan == nil {
		t.Fatalf("no plan among test objects")
	}

	cl := fake.NewClientBuilder().WithScheme(scheme).WithObjects(objs...).WithStatusSubresource(plan).Build()
	recorder := record.NewFakeRecorder(32)
	r := &ConfigurationPlanReconciler{Client: cl, Scheme: scheme, Recorder: recorder, Clientset: cs}

	res, err := r.Reconcile(ctx, ctrl.Request{NamespacedName: types.NamespacedName{Namespace: testNamespace, Name: plan.Name}})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Requeue || res.RequeueAfter != 0 {
		t.Fatalf("expected no requeue, got %+v", res)
	}

	var got v1alpha1.ConfigurationPlan
	if err := cl.Get(ctx, types.NamespacedName{Namespace: testNamespace, Name: plan.Name}, &got); err != nil {
		t.Fatalf("get plan: %v", err)
	}
	return &got, recorder
}

func drainEvents(rec *record.FakeRecorder) []string {
	var out []string
	for {
		select {
		case e := <-rec.Events:
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestConfigurationPlanReconcile_OrdersMatchingCandidates(t *testing.T) {
	env := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "app-env", Namespace: testNamespace},
		Data: map[string]string{
			"library.lettuce":     "6.3.2",
			"cache.redis.enabled": "true",
			"autoconfig.exclude":  "web.mvc",
		},
	}
	plan := configurationPlan(v1alpha1.ConfigurationPlanSpec{EnvironmentRef: &v1alpha1.ObjectRef{Name: "app-env"}})

	got, rec := reconcilePlan(t, env, plan,
		autoConfiguration("core.properties", v1alpha1.AutoConfigurationSpec{Order: -100}),
		autoConfiguration("data.redis", v1alpha1.AutoConfigurationSpec{
			After:      []string{"core.properties"},
			Conditions: v1alpha1.ImportConditions{OnLibrary: []v1alpha1.LibraryRequirement{{Name: "lettuce", Version: ">=6"}}},
		}),
		autoConfiguration("cache.redis", v1alpha1.AutoConfigurationSpec{
			After:      []string{"data.redis"},
			Conditions: v1alpha1.ImportConditions{OnProperty: []v1alpha1.PropertyCondition{{Name: "cache.redis.enabled", HavingValue: "true"}}},
		}),
		autoConfiguration("cache.hazelcast", v1alpha1.AutoConfigurationSpec{
			Conditions: v1alpha1.ImportConditions{OnLibrary: []v1alpha1.LibraryRequirement{{Name: "hazelcast"}}},
		}),
		autoConfiguration("web.mvc", v1alpha1.AutoConfigurationSpec{Order: 10}),
	)

	if got.Status.Phase != PlanPhaseReady {
		t.Fatalf("expected phase %q, got %q (%s)", PlanPhaseReady, got.Status.Phase, got.Status.Message)
	}
	want := []string{"core.properties", "data.redis", "cache.redis"}
	if strings.Join(got.Status.Imports, ",") != strings.Join(want, ",") {
		t.Fatalf("expected imports %v, got %v", want, got.Status.Imports)
	}
	if got.Status.ImportCount != 3 {
		t.Fatalf("expected importCount 3, got %d", got.Status.ImportCount)
	}
	if len(got.Status.Excluded) != 1 || got.Status.Excluded[0] != "web.mvc" {
		t.Fatalf("expected web.mvc excluded, got %v", got.Status.Excluded)
	}
	if len(got.Status.Unmatched) != 1 || got.Status.Unmatched[0].Name != "cache.hazelcast" {
		t.Fatalf("expected cache.hazelcast unmatched, got %+v", got.Status.Unmatched)
	}
	if len(got.Status.Unmatched[0].Reasons) == 0 {
		t.Fatalf("expected unmatched reasons")
	}
	if got.Status.ObservedGeneration != got.Generation {
		t.Fatalf("expected observedGeneration %d, got %d", got.Generation, got.Status.ObservedGeneration)
	}
	if !meta.IsStatusConditionTrue(got.Status.Conditions, PlanConditionCandidatesLoaded) {
		t.Fatalf("expected %s=True", PlanConditionCandidatesLoaded)
	}
	if !meta.IsStatusConditionTrue(got.Status.Conditions, PlanConditionOrdered) {
		t.Fatalf("expected %s=True", PlanConditionOrdered)
	}

	events := drainEvents(rec)
	if len(events) != 1 || !strings.HasPrefix(events[0], "Normal Ordered") {
		t.Fatalf("expected one Ordered event, got %v", events)
	}
}

func TestConfigurationPlanReconcile_CycleMarksPlanError(t *testing.T) {
	plan := configurationPlan(v1alpha1.ConfigurationPlanSpec{})

	got, rec := reconcilePlan(t, plan,
		autoConfiguration("data.jdbc", v1alpha1.AutoConfigurationSpec{After: []string{"data.source"}}),
		autoConfiguration("data.source", v1alpha1.AutoConfigurationSpec{After: []string{"data.jdbc"}}),
	)

	if got.Status.Phase != PlanPhaseError {
		t.Fatalf("expected phase %q, got %q", PlanPhaseError, got.Status.Phase)
	}
	if len(got.Status.Imports) != 0 {
		t.Fatalf("expected no imports, got %v", got.Status.Imports)
	}
	ordered := meta.FindStatusCondition(got.Status.Conditions, PlanConditionOrdered)
	if ordered == nil || ordered.Status != metav1.ConditionFalse || ordered.Reason != reasonCycleDetected {
		t.Fatalf("expected Ordered=False/%s, got %+v", reasonCycleDetected, ordered)
	}
	if !strings.Contains(ordered.Message, "data.jdbc") || !strings.Contains(ordered.Message, "data.source") {
		t.Fatalf("expected cycle members in message, got %q", ordered.Message)
	}

	events := drainEvents(rec)
	if len(events) != 1 || !strings.HasPrefix(events[0], "Warning "+reasonCycleDetected) {
		t.Fatalf("expected one cycle warning, got %v", events)
	}
}

func TestConfigurationPlanReconcile_InvalidExclusions(t *testing.T) {
	env := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "app-env", Namespace: testNamespace},
		Data:       map[string]string{"library.lettuce": "6.3.2"},
	}
	plan := configurationPlan(v1alpha1.ConfigurationPlanSpec{
		Exclusions:     []string{"lettuce"},
		EnvironmentRef: &v1alpha1.ObjectRef{Name: "app-env"},
	})

	got, _ := reconcilePlan(t, env, plan, autoConfiguration("data.redis", v1alpha1.AutoConfigurationSpec{}))

	ordered := meta.FindStatusCondition(got.Status.Conditions, PlanConditionOrdered)
	if ordered == nil || ordered.Reason != reasonInvalidExclusions {
		t.Fatalf("expected Ordered reason %s, got %+v", reasonInvalidExclusions, ordered)
	}
	if !strings.Contains(got.Status.Message, "lettuce") {
		t.Fatalf("expected offending name in message, got %q", got.Status.Message)
	}
}

func TestConfigurationPlanReconcile_MissingEnvironment(t *testing.T) {
	plan := configurationPlan(v1alpha1.ConfigurationPlanSpec{EnvironmentRef: &v1alpha1.ObjectRef{Name: "missing"}})

	got, rec := reconcilePlan(t, plan, autoConfiguration("core.properties", v1alpha1.AutoConfigurationSpec{}))

	if got.Status.Phase != PlanPhaseError {
		t.Fatalf("expected phase %q, got %q", PlanPhaseError, got.Status.Phase)
	}
	loaded := meta.FindStatusCondition(got.Status.Conditions, PlanConditionCandidatesLoaded)
	if loaded == nil || loaded.Reason != "EnvironmentNotFound" {
		t.Fatalf("expected EnvironmentNotFound, got %+v", loaded)
	}
	events := drainEvents(rec)
	if len(events) != 1 || !strings.Contains(events[0], "EnvironmentNotFound") {
		t.Fatalf("expected EnvironmentNotFound event, got %v", events)
	}
}

func TestConfigurationPlanReconcile_SkipsInvalidAutoConfigurations(t *testing.T) {
	plan := configurationPlan(v1alpha1.ConfigurationPlanSpec{})

	got, rec := reconcilePlan(t, plan,
		autoConfiguration("core.properties", v1alpha1.AutoConfigurationSpec{}),
		autoConfiguration("broken", v1alpha1.AutoConfigurationSpec{After: []string{"broken"}}),
	)

	if got.Status.Phase != PlanPhaseReady {
		t.Fatalf("expected phase %q, got %q (%s)", PlanPhaseReady, got.Status.Phase, got.Status.Message)
	}
	if strings.Join(got.Status.Imports, ",") != "core.properties" {
		t.Fatalf("expected only core.properties, got %v", got.Status.Imports)
	}
	loaded := meta.FindStatusCondition(got.Status.Conditions, PlanConditionCandidatesLoaded)
	if loaded == nil || !strings.Contains(loaded.Message, "1 skipped") {
		t.Fatalf("expected skipped count in condition, got %+v", loaded)
	}
	var sawInvalid bool
	for _, e := range drainEvents(rec) {
		if strings.Contains(e, "InvalidAutoConfiguration") {
			sawInvalid = true
		}
	}
	if !sawInvalid {
		t.Fatalf("expected InvalidAutoConfiguration event")
	}
}

func TestConfigurationPlanReconcile_NotFoundIsIgnored(t *testing.T) {
	scheme := testScheme(t)
	cl := fake.NewClientBuilder().WithScheme(scheme).Build()
	r := &ConfigurationPlanReconciler{Client: cl, Scheme: scheme}

	if _, err := r.Reconcile(context.Background(), ctrl.Request{NamespacedName: types.NamespacedName{Namespace: testNamespace, Name: "gone"}}); err != nil {
		t.Fatalf("expected not found to be ignored, got %v", err)
	}
}

func metadataConfigMap(name, doc string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: testNamespace,
			Labels:    map[string]string{metadata.MetadataLabel: "true"},
		},
		Data: map[string]string{"autoconfig.yaml": doc},
	}
}

func TestConfigurationPlanReconcile_MergesMetadataConfigMaps(t *testing.T) {
	cs := k8sfake.NewSimpleClientset(metadataConfigMap("shared-metadata",
		"autoConfigurations:\n"+
			"  - name: core.properties\n    order: -100\n"+
			"  - name: data.redis\n    after: [core.properties]\n"+
			"  - name: web.mvc\n    order: 10\n"))
	plan := configurationPlan(v1alpha1.ConfigurationPlanSpec{})

	got, _ := reconcilePlanWithClientset(t, cs, plan,
		// Overrides the ConfigMap entry of the same name.
		autoConfiguration("data.redis", v1alpha1.AutoConfigurationSpec{Order: -200}),
	)

	if got.Status.Phase != PlanPhaseReady {
		t.Fatalf("expected phase %q, got %q (%s)", PlanPhaseReady, got.Status.Phase, got.Status.Message)
	}
	want := []string{"data.redis", "core.properties", "web.mvc"}
	if strings.Join(got.Status.Imports, ",") != strings.Join(want, ",") {
		t.Fatalf("expected imports %v, got %v", want, got.Status.Imports)
	}
}

func TestConfigurationPlanReconcile_InvalidMetadataConfigMap(t *testing.T) {
	cs := k8sfake.NewSimpleClientset(metadataConfigMap("broken-metadata", "autoConfigurations: ["))
	plan := configurationPlan(v1alpha1.ConfigurationPlanSpec{})

	got, rec := reconcilePlanWithClientset(t, cs, plan,
		autoConfiguration("core.properties", v1alpha1.AutoConfigurationSpec{}),
	)

	if got.Status.Phase != PlanPhaseError {
		t.Fatalf("expected phase %q, got %q", PlanPhaseError, got.Status.Phase)
	}
	if len(got.Status.Imports) != 0 {
		t.Fatalf("expected no imports, got %v", got.Status.Imports)
	}
	cond := meta.FindStatusCondition(got.Status.Conditions, PlanConditionCandidatesLoaded)
	if cond == nil || cond.Status != metav1.ConditionFalse || cond.Reason != "InvalidMetadata" {
		t.Fatalf("expected CandidatesLoaded=False/InvalidMetadata, got %+v", cond)
	}
	events := drainEvents(rec)
	if len(events) != 1 || !strings.HasPrefix(events[0], "Warning InvalidMetadata") {
		t.Fatalf("expected one InvalidMetadata warning, got %v", events)
	}
}

func TestPlansForConfigMap(t *testing.T) {
	scheme := testScheme(t)
	uses := configurationPlan(v1alpha1.ConfigurationPlanSpec{EnvironmentRef: &v1alpha1.ObjectRef{Name: "app-env"}})
	other := configurationPlan(v1alpha1.ConfigurationPlanSpec{EnvironmentRef: &v1alpha1.ObjectRef{Name: "other-env"}})
	other.Name = "other"

	cl := fake.NewClientBuilder().
		WithScheme(scheme).
		WithObjects(uses, other).
		WithIndex(&v1alpha1.ConfigurationPlan{}, environmentRefIndex, indexEnvironmentRef).
		Build()
	ctx := context.Background()

	env := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "app-env", Namespace: testNamespace}}
	reqs := plansForConfigMap(ctx, cl, env)
	if len(reqs) != 1 || reqs[0].Name != "app" {
		t.Fatalf("expected only plan app, got %v", reqs)
	}

	shared := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{
		Name:      "shared-metadata",
		Namespace: testNamespace,
		Labels:    map[string]string{metadata.MetadataLabel: "true"},
	}}
	if reqs := plansForConfigMap(ctx, cl, shared); len(reqs) != 2 {
		t.Fatalf("expected every plan for a metadata configmap, got %v", reqs)
	}
}

func TestFailureMessage(t *testing.T) {
	if got := failureMessage(errors.New("catalog unavailable")); got != "catalog unavailable" {
		t.Fatalf("expected raw error text, got %q", got)
	}
	got := failureMessage(&sorter.CycleError{Current: "a", After: "b"})
	if strings.Contains(got, "\n") || !strings.Contains(got, "Action: ") {
		t.Fatalf("expected single-line analysis with action, got %q", got)
	}
}
