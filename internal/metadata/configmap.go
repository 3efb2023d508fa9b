package metadata

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/client-go/kubernetes"
)

// MetadataLabel marks ConfigMaps that carry candidate documents.
const MetadataLabel = "autoconfig.platform/metadata"

// ErrInvalidConfigMap marks Load failures caused by a document that does not
// decode or validate, as opposed to failures talking to the API server.
var ErrInvalidConfigMap = errors.New("metadata: invalid configmap document")

// ConfigMapSource loads candidates from labelled ConfigMaps. Every data key ending
// in .yaml or .yml holds one Document.
type ConfigMapSource struct {
	Client    kubernetes.Interface
	Namespace string
}

// Load lists the labelled ConfigMaps and merges their documents. ConfigMaps are
// applied in name order, so on duplicate names the lexicographically last
// ConfigMap wins.
func (s *ConfigMapSource) Load(ctx context.Context) (*Catalog, error) {
	list, err := s.Client.CoreV1().ConfigMaps(s.Namespace).List(ctx, metav1.ListOptions{
		LabelSelector: MetadataLabel + "=true",
	})
	if err != nil {
		return nil, fmt.Errorf("metadata: list configmaps in %q: %w", s.Namespace, err)
	}

	items := list.Items
	slices.SortFunc(items, func(a, b corev1.ConfigMap) int {
		return strings.Compare(a.Name, b.Name)
	})

	catalog := NewCatalog()
	var errs []error
	for i := range items {
		cm := &items[i]
		for _, key := range sets.List(sets.KeySet(cm.Data)) {
			if !strings.HasSuffix(key, ".yaml") && !strings.HasSuffix(key, ".yml") {
				continue
			}
			doc, err := DecodeDocument(strings.NewReader(cm.Data[key]))
			if err != nil {
				errs = append(errs, fmt.Errorf("configmap %s/%s key %q: %w", cm.Namespace, cm.Name, key, err))
				continue
			}
			catalog.Merge(doc)
		}
	}
	if err := utilerrors.NewAggregate(errs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfigMap, err)
	}
	return catalog, nil
}
