// Package convective implements the surface-based parcel ascent analysis:
// lifting condensation level, level of free convection, equilibrium level,
// and the CAPE/CIN energy integrals.
package convective

import "errors"

var (
	// ErrInsufficientData means the profile has too few levels to analyze.
	ErrInsufficientData = errors.New("insufficient sounding data")

	// ErrConvergence means an iterative solver failed to converge.
	ErrConvergence = errors.New("iterative solver did not converge")
)
