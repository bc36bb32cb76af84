package models

import "math"

const (
	Gravity    = 9.8   // m/s^2, acts toward -altitude
	AirDensity = 1.224 // kg/m^3, constant with altitude

	// minSpeed below which the velocity direction is undefined and
	// aerodynamic forces are taken as zero.
	minSpeed = 1e-9
)

// DynamicPressure returns 0.5*rho*v^2.
func DynamicPressure(speed float64) float64 {
	return 0.5 * AirDensity * speed * speed
}

// DragForce returns the magnitude of the drag force at the given speed.
func DragForce(speed, cd, area float64) float64 {
	return DynamicPressure(speed) * cd * area
}

// wrapAngle maps a to (-pi, pi].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
