package flightlog

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type Summary struct {
	Rows          int     `json:"rows"`
	Apogee        float64 `json:"apogee"`
	ApogeeTime    float64 `json:"apogee_time"`
	MaxSpeed      float64 `json:"max_speed"`
	FlightTime    float64 `json:"flight_time"`
	FinalAltitude float64 `json:"final_altitude"`
}

// Summarize computes flight statistics from the altitude and velocity
// columns. 1DOF logs carry "velocity", 3DOF logs "vx" and "vy".
func Summarize(l *Log) Summary {
	s := Summary{Rows: l.Len()}
	if l.Len() == 0 {
		return s
	}

	alt := l.Named("altitude")
	if len(alt) > 0 {
		i := floats.MaxIdx(alt)
		s.Apogee = alt[i]
		s.ApogeeTime = l.Time(i)
		s.FinalAltitude = alt[len(alt)-1]
	}

	s.FlightTime = l.Time(l.Len()-1) - l.Time(0)
	s.MaxSpeed = maxSpeed(l)
	return s
}

func maxSpeed(l *Log) float64 {
	if v := l.Named("velocity"); v != nil {
		best := 0.0
		for _, x := range v {
			best = math.Max(best, math.Abs(x))
		}
		return best
	}

	vx, vy := l.Named("vx"), l.Named("vy")
	if vx == nil || vy == nil {
		return 0
	}
	best := 0.0
	for i := range vx {
		best = math.Max(best, math.Hypot(vx[i], vy[i]))
	}
	return best
}
