package naming

import (
	"fmt"
	"sort"
	"strings"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/validation"
)

// Validate reports derived names and labels the API server would reject, for
// example a release name with upper-case letters. The derivers themselves
// never fail; this is a separate check run before installing.
func Validate(ctx Context) error {
	var errs []error

	names := []struct {
		field string
		value string
	}{
		{"name", Name(ctx)},
		{"fullname", Fullname(ctx)},
		{"serviceAccountName", ServiceAccountName(ctx)},
	}
	for _, n := range names {
		if msgs := validation.IsDNS1123Label(n.value); len(msgs) > 0 {
			errs = append(errs, fmt.Errorf("%s %q: %s", n.field, n.value, strings.Join(msgs, "; ")))
		}
	}

	labels := Labels(ctx)
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msgs := validation.IsQualifiedName(k); len(msgs) > 0 {
			errs = append(errs, fmt.Errorf("label key %q: %s", k, strings.Join(msgs, "; ")))
		}
		if msgs := validation.IsValidLabelValue(labels[k]); len(msgs) > 0 {
			errs = append(errs, fmt.Errorf("label %s=%q: %s", k, labels[k], strings.Join(msgs, "; ")))
		}
	}

	if err := ValidateImage(ResolveImage(ctx)); err != nil {
		errs = append(errs, err)
	}

	return utilerrors.NewAggregate(errs)
}
