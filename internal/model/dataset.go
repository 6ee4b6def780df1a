package model

import (
	"fmt"
	"strings"
)

// Kind identifies a dataset family
type Kind string

const (
	KindEnrolment   Kind = "enrolment"
	KindDemographic Kind = "demographic"
	KindBiometric   Kind = "biometric"
	// KindCombined is the reconciled view over the three kinds above
	KindCombined Kind = "combined"
)

// Canonical column names shared by every kind
const (
	ColDate     = "date"
	ColState    = "state"
	ColDistrict = "district"
	ColPincode  = "pincode"
	ColMonth    = "month"
)

// ReconciliationKey lists the columns rows are aligned on across kinds
var ReconciliationKey = []string{ColDate, ColState, ColDistrict, ColPincode, ColMonth}

// DefaultDateFormat is the day-first layout the source files are written in
const DefaultDateFormat = "02-01-2006"

// DatasetSpec configures the pipeline for one kind
type DatasetSpec struct {
	Kind           Kind     `json:"kind" yaml:"kind"`
	Files          []string `json:"files" yaml:"files"`                     // fixed fallback filenames
	Pattern        string   `json:"pattern" yaml:"pattern"`                 // glob under the data dir
	MeasureColumns []string `json:"measure_columns" yaml:"measure_columns"` // summed into TotalName
	TotalName      string   `json:"total_name" yaml:"total_name"`
	DateFormat     string   `json:"date_format" yaml:"date_format"` // Go layout tried before the day-first list
}

// Validate checks that the configuration can drive a load
func (s DatasetSpec) Validate() error {
	if !s.Kind.IsSource() {
		return fmt.Errorf("unknown dataset kind %q", s.Kind)
	}
	if len(s.MeasureColumns) == 0 {
		return fmt.Errorf("%s: at least one measure column is required", s.Kind)
	}
	if strings.TrimSpace(s.TotalName) == "" {
		return fmt.Errorf("%s: total column name is required", s.Kind)
	}
	for _, m := range s.MeasureColumns {
		if m == s.TotalName {
			return fmt.Errorf("%s: total column %q is also a measure column", s.Kind, m)
		}
	}
	if len(s.Files) == 0 && s.Pattern == "" {
		return fmt.Errorf("%s: files or pattern is required", s.Kind)
	}
	return nil
}

// IsSource reports whether the kind is backed by its own files
func (k Kind) IsSource() bool {
	switch k {
	case KindEnrolment, KindDemographic, KindBiometric:
		return true
	}
	return false
}

// ParseKind accepts the kind names case-insensitively, plus "enrollment"
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enrolment", "enrollment":
		return KindEnrolment, nil
	case "demographic":
		return KindDemographic, nil
	case "biometric":
		return KindBiometric, nil
	case "combined":
		return KindCombined, nil
	}
	return "", fmt.Errorf("unknown dataset kind %q", s)
}

// SourceKinds lists the file-backed kinds in reconciliation order
func SourceKinds() []Kind {
	return []Kind{KindEnrolment, KindDemographic, KindBiometric}
}

// DefaultDatasets returns the built-in configuration for each file-backed kind
func DefaultDatasets() map[Kind]DatasetSpec {
	return map[Kind]DatasetSpec{
		KindEnrolment: {
			Kind: KindEnrolment,
			Files: []string{
				"enrollment_all (1).csv",
				"enrollment_all (1)_2.csv",
				"enrollment_all (1)_3.csv",
			},
			Pattern:        "enrollment_all*.csv",
			MeasureColumns: []string{"age_0_5", "age_5_17", "age_18_greater"},
			TotalName:      "total_enrolments",
			DateFormat:     DefaultDateFormat,
		},
		KindDemographic: {
			Kind: KindDemographic,
			Files: []string{
				"demo_all (1).csv",
				"demo_all (1)_2.csv",
			},
			Pattern:        "demo_all*.csv",
			MeasureColumns: []string{"demo_age_5_17", "demo_age_17_"},
			TotalName:      "total_demographic",
			DateFormat:     DefaultDateFormat,
		},
		KindBiometric: {
			Kind: KindBiometric,
			Files: []string{
				"mightymerge.io__xzzeu4zp.csv",
				"mightymerge.io__xzzeu4zp (1)_2.csv",
			},
			Pattern:        "mightymerge.io__*.csv",
			MeasureColumns: []string{"bio_age_5_17", "bio_age_17_"},
			TotalName:      "total_biometric",
			DateFormat:     DefaultDateFormat,
		},
	}
}
