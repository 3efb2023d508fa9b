package sorter

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/anvil-platform/autoconfig/internal/metadata"
)

func catalog(entries ...metadata.Metadata) *metadata.Catalog {
	return metadata.NewCatalog(entries...)
}

func mustSort(t *testing.T, reader metadata.Reader, names ...string) []string {
	t.Helper()
	got, err := Sort(reader, names)
	if err != nil {
		t.Fatalf("Sort(%v): %v", names, err)
	}
	return got
}

func TestSort_AlphabeticalWithoutConstraints(t *testing.T) {
	c := catalog(metadata.Metadata{Name: "X"}, metadata.Metadata{Name: "Y"})

	got := mustSort(t, c, "Y", "X")
	if diff := cmp.Diff([]string{"X", "Y"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_LowerOrderFirst(t *testing.T) {
	c := catalog(metadata.Metadata{Name: "X"}, metadata.Metadata{Name: "Y", Order: -100})

	got := mustSort(t, c, "X", "Y")
	if diff := cmp.Diff([]string{"Y", "X"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_AfterConstraint(t *testing.T) {
	c := catalog(
		metadata.Metadata{Name: "X"},
		metadata.Metadata{Name: "Y"},
		metadata.Metadata{Name: "Z", After: []string{"X"}},
	)

	got := mustSort(t, c, "Z", "Y", "X")
	if diff := cmp.Diff([]string{"X", "Y", "Z"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_AfterOverridesPriority(t *testing.T) {
	c := catalog(
		metadata.Metadata{Name: "X", Order: 10},
		metadata.Metadata{Name: "Y"},
		metadata.Metadata{Name: "Z", Order: -10, After: []string{"X"}},
	)

	got := mustSort(t, c, "X", "Y", "Z")
	if diff := cmp.Diff([]string{"X", "Z", "Y"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_BeforeIsSymmetricWithAfter(t *testing.T) {
	c := catalog(
		metadata.Metadata{Name: "web.errors"},
		metadata.Metadata{Name: "web.mvc", Order: 10, Before: []string{"web.errors"}},
	)

	got := mustSort(t, c, "web.errors", "web.mvc")
	if diff := cmp.Diff([]string{"web.mvc", "web.errors"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_DirectCycle(t *testing.T) {
	c := catalog(
		metadata.Metadata{Name: "A", After: []string{"B"}},
		metadata.Metadata{Name: "B", After: []string{"A"}},
	)

	got, err := Sort(c, []string{"A", "B"})
	if err == nil {
		t.Fatalf("expected cycle error, got order %v", got)
	}
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
	pair := map[string]bool{cycle.Current: true, cycle.After: true}
	if !pair["A"] || !pair["B"] {
		t.Fatalf("expected cycle between A and B, got %q and %q", cycle.Current, cycle.After)
	}
	if got != nil {
		t.Fatalf("expected no partial result, got %v", got)
	}
}

func TestSort_LongCycleThroughBefore(t *testing.T) {
	c := catalog(
		metadata.Metadata{Name: "A", After: []string{"B"}},
		metadata.Metadata{Name: "B", After: []string{"C"}},
		metadata.Metadata{Name: "C", Before: []string{"A"}, After: []string{"A"}},
	)

	_, err := Sort(c, []string{"A", "B", "C"})
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestSort_SelfReferenceIsACycle(t *testing.T) {
	c := catalog(metadata.Metadata{Name: "A", After: []string{"A"}})

	_, err := Sort(c, []string{"A"})
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestSort_HonorsConstraintsThroughUnrequestedCandidates(t *testing.T) {
	c := catalog(
		metadata.Metadata{Name: "A", After: []string{"B"}},
		metadata.Metadata{Name: "B", After: []string{"C"}},
		metadata.Metadata{Name: "C", Order: 10},
	)

	got := mustSort(t, c, "A", "C")
	if diff := cmp.Diff([]string{"C", "A"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_UnrequestedBeforeDeclarationsApply(t *testing.T) {
	c := catalog(
		metadata.Metadata{Name: "A", After: []string{"glue"}},
		metadata.Metadata{Name: "B", Order: 5},
		metadata.Metadata{Name: "glue", Before: []string{"A"}, After: []string{"B"}},
	)

	got := mustSort(t, c, "A", "B")
	if diff := cmp.Diff([]string{"B", "A"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_UnavailableCandidates(t *testing.T) {
	c := catalog(
		metadata.Metadata{Name: "A", After: []string{"not.on.path"}, Before: []string{"also.missing"}},
		metadata.Metadata{Name: "B", Order: -1},
	)

	got := mustSort(t, c, "A", "B", "requested.but.unknown")
	if diff := cmp.Diff([]string{"B", "A", "requested.but.unknown"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_ReaderErrorsAreNotFatal(t *testing.T) {
	reader := metadata.ReaderFunc(func(name string) (metadata.Metadata, error) {
		if name == "A" {
			return metadata.Metadata{Name: "A", After: []string{"broken"}}, nil
		}
		return metadata.Metadata{}, errors.New("cannot inspect " + name)
	})

	// "broken" stays in the result and still satisfies A's after declaration.
	got := mustSort(t, reader, "broken", "A")
	if diff := cmp.Diff([]string{"broken", "A"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_NilReaderFallsBackToAlphabetical(t *testing.T) {
	got := mustSort(t, nil, "b", "a", "c")
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_CollapsesDuplicates(t *testing.T) {
	c := catalog(metadata.Metadata{Name: "A"}, metadata.Metadata{Name: "B"})

	got := mustSort(t, c, "B", "A", "B", "A")
	if diff := cmp.Diff([]string{"A", "B"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_EmptyInput(t *testing.T) {
	got := mustSort(t, catalog())
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestSort_PendingDependenciesFollowQueuePosition(t *testing.T) {
	c := catalog(
		metadata.Metadata{Name: "A"},
		metadata.Metadata{Name: "B"},
		metadata.Metadata{Name: "Z", Order: -10, After: []string{"B", "A"}},
	)

	got := mustSort(t, c, "A", "B", "Z")
	if diff := cmp.Diff([]string{"A", "B", "Z"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSort_DeterministicAcrossInputOrder(t *testing.T) {
	c := catalog(
		metadata.Metadata{Name: "core.properties", Order: -100},
		metadata.Metadata{Name: "data.jdbc", After: []string{"data.source"}},
		metadata.Metadata{Name: "data.source", After: []string{"core.properties"}},
		metadata.Metadata{Name: "data.transactions", After: []string{"data.jdbc"}},
		metadata.Metadata{Name: "web.mvc", Order: 10},
		metadata.Metadata{Name: "web.errors", After: []string{"web.mvc"}},
		metadata.Metadata{Name: "cache.redis", Before: []string{"data.jdbc"}},
	)

	inputs := [][]string{
		{"web.errors", "data.transactions", "core.properties", "cache.redis", "data.jdbc", "web.mvc", "data.source"},
		{"data.source", "web.mvc", "data.jdbc", "cache.redis", "core.properties", "data.transactions", "web.errors"},
		{"cache.redis", "core.properties", "data.jdbc", "data.source", "data.transactions", "web.errors", "web.mvc"},
	}
	first := mustSort(t, c, inputs[0]...)
	for _, in := range inputs[1:] {
		if diff := cmp.Diff(first, mustSort(t, c, in...)); diff != "" {
			t.Fatalf("order depends on input order (-first +got):\n%s", diff)
		}
	}

	index := make(map[string]int, len(first))
	for i, name := range first {
		index[name] = i
	}
	if len(index) != len(inputs[0]) {
		t.Fatalf("expected a permutation of the input, got %v", first)
	}
	mustPrecede := [][2]string{
		{"core.properties", "data.source"},
		{"data.source", "data.jdbc"},
		{"data.jdbc", "data.transactions"},
		{"web.mvc", "web.errors"},
		{"cache.redis", "data.jdbc"},
	}
	for _, pair := range mustPrecede {
		if index[pair[0]] > index[pair[1]] {
			t.Fatalf("expected %s before %s in %v", pair[0], pair[1], first)
		}
	}
}

func TestSorter_ConcurrentUse(t *testing.T) {
	c := catalog(
		metadata.Metadata{Name: "A", After: []string{"B"}},
		metadata.Metadata{Name: "B"},
		metadata.Metadata{Name: "C", Order: -1},
	)
	s := New(c)
	want := []string{"C", "B", "A"}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Sort([]string{"A", "B", "C"})
			if err != nil {
				errs <- err
				return
			}
			if diff := cmp.Diff(want, got); diff != "" {
				errs <- errors.New(diff)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
