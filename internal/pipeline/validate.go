package pipeline

import (
	apperrors "uidai-pipeline/internal/errors"
	"uidai-pipeline/internal/model"
)

// MissingColumns returns the names from want that t does not have, in order.
func MissingColumns(t model.Table, want []string) []string {
	var missing []string
	for _, c := range want {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// RequireColumns fails with MISSING_COLUMNS when a non-empty table lacks any of want.
func RequireColumns(label string, t model.Table, want []string) error {
	if t.IsEmpty() {
		return nil
	}
	if missing := MissingColumns(t, want); len(missing) > 0 {
		return apperrors.MissingColumns(label, missing)
	}
	return nil
}
