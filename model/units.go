package model

import "math"

// Scene distances are dimensionless "units"; the registry fixes the km
// per unit ratio at load time. The default of one astronomical unit per
// scene unit keeps planetary positions in single digits while leaving
// float64 plenty of precision for body radii.
const (
	KmPerAU          = 1.495978707e8
	SecondsPerDay    = 86400.0
	DefaultKmPerUnit = KmPerAU
)

const pi = math.Pi

// KmToUnits converts a physical distance to scene units.
func KmToUnits(km, kmPerUnit float64) float64 {
	return km / kmPerUnit
}

// UnitsToKm converts a scene distance back to kilometres.
func UnitsToKm(units, kmPerUnit float64) float64 {
	return units * kmPerUnit
}
