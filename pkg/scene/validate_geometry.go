package scene

import (
	"fmt"
	"math"
	"sort"

	"github.com/chazu/geoshell/pkg/deform"
	"github.com/chazu/geoshell/pkg/kernel/geodesic"
)

// DenseFrequency is the subdivision frequency above which a warning is
// raised. A frequency-64 shell already has 40962 vertices.
const DenseFrequency = 64

// MaxFrequency is the largest frequency a surface may request.
const MaxFrequency = geodesic.MaxFrequency

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all geometric checks.
func validateGeometry(s *Scene) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateShellParams(s)...)
	errs = append(errs, validateLensParams(s)...)
	errs = append(errs, validateTransformParams(s)...)

	warnings = append(warnings, validateFrequencyBudget(s)...)
	warnings = append(warnings, validateCoincidentShells(s)...)
	warnings = append(warnings, validateLensNesting(s)...)
	return errs, warnings
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func frequencyError(n *Node, f int) (ValidationError, bool) {
	switch {
	case f < 1:
		return ValidationError{
			NodeID:   n.ID,
			Message:  fmt.Sprintf("%s %q frequency is %d, must be at least 1", n.Kind, n.DisplayName(), f),
			Severity: SeverityError,
		}, true
	case f > MaxFrequency:
		return ValidationError{
			NodeID:   n.ID,
			Message:  fmt.Sprintf("%s %q frequency is %d, must be at most %d", n.Kind, n.DisplayName(), f, MaxFrequency),
			Severity: SeverityError,
		}, true
	}
	return ValidationError{}, false
}

// validateShellParams checks radius and frequency of every shell.
func validateShellParams(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, n := range s.Surfaces() {
		sd, ok := n.Data.(ShellData)
		if !ok {
			continue
		}
		if !finitePositive(sd.Radius) {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("shell %q radius is %.4g, must be positive", n.DisplayName(), sd.Radius),
				Severity: SeverityError,
			})
		}
		if e, bad := frequencyError(n, sd.Frequency); bad {
			errs = append(errs, e)
		}
	}
	return errs
}

// validateLensParams checks lens parameters with the deformer's own rules.
func validateLensParams(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, n := range s.Surfaces() {
		ld, ok := n.Data.(LensData)
		if !ok {
			continue
		}
		p := deform.LensParams{HalfThickness: ld.HalfThickness, BaseRadius: ld.BaseRadius, HalfAngle: ld.HalfAngle}
		if err := p.Validate(); err != nil {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("lens %q: %v", n.DisplayName(), err),
				Severity: SeverityError,
			})
		}
		if e, bad := frequencyError(n, ld.Frequency); bad {
			errs = append(errs, e)
		}
	}
	return errs
}

// validateTransformParams checks that scale factors are positive.
func validateTransformParams(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range s.Order {
		n := s.Nodes[id]
		td, ok := n.Data.(TransformData)
		if !ok || td.Scale == nil {
			continue
		}
		if !finitePositive(*td.Scale) {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("place scale is %.4g, must be positive", *td.Scale),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

func frequencyOf(n *Node) int {
	switch d := n.Data.(type) {
	case ShellData:
		return d.Frequency
	case LensData:
		return d.Frequency
	}
	return 0
}

// validateFrequencyBudget warns about very dense meshes.
func validateFrequencyBudget(s *Scene) []ValidationWarning {
	var warnings []ValidationWarning
	for _, n := range s.Surfaces() {
		if f := frequencyOf(n); f > DenseFrequency && f <= MaxFrequency {
			warnings = append(warnings, ValidationWarning{
				NodeID:  n.ID,
				Message: fmt.Sprintf("%s %q frequency %d produces %d vertices", n.Kind, n.DisplayName(), f, 10*f*f+2),
			})
		}
	}
	return warnings
}

// shellRadii returns the radii of all shells, sorted ascending.
func shellRadii(s *Scene) []float64 {
	var radii []float64
	for _, n := range s.Surfaces() {
		if sd, ok := n.Data.(ShellData); ok && finitePositive(sd.Radius) {
			radii = append(radii, sd.Radius)
		}
	}
	sort.Float64s(radii)
	return radii
}

// validateCoincidentShells warns when two shells share a radius.
func validateCoincidentShells(s *Scene) []ValidationWarning {
	var warnings []ValidationWarning
	radii := shellRadii(s)
	for i := 1; i < len(radii); i++ {
		if radii[i] == radii[i-1] {
			warnings = append(warnings, ValidationWarning{
				Message: fmt.Sprintf("two shells share radius %.4g", radii[i]),
			})
		}
	}
	return warnings
}

// validateLensNesting warns when a lens crosses a shell or does not lie
// between two shells. An inclusion normally sits inside one tissue layer.
func validateLensNesting(s *Scene) []ValidationWarning {
	var warnings []ValidationWarning
	radii := shellRadii(s)
	if len(radii) == 0 {
		return nil
	}
	for _, n := range s.Surfaces() {
		ld, ok := n.Data.(LensData)
		if !ok {
			continue
		}
		inner, outer := ld.Inner(), ld.Outer()
		below, above := false, false
		for _, r := range radii {
			if r > inner && r < outer {
				warnings = append(warnings, ValidationWarning{
					NodeID:  n.ID,
					Message: fmt.Sprintf("lens %q spans [%.4g, %.4g] and crosses the shell at radius %.4g", n.DisplayName(), inner, outer, r),
				})
			}
			if r <= inner {
				below = true
			}
			if r >= outer {
				above = true
			}
		}
		if !below || !above {
			warnings = append(warnings, ValidationWarning{
				NodeID:  n.ID,
				Message: fmt.Sprintf("lens %q is not enclosed between two shells", n.DisplayName()),
			})
		}
	}
	return warnings
}
