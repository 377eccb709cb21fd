// Package weather fetches current conditions for a location and
// canonicalizes them into the units the safety engine expects.
package weather

// Observation is the canonicalized reading the rest of the system
// consumes. It is transient — never persisted by the core.
type Observation struct {
	VisibilityStatuteMiles float64
	WindSpeedKnots         float64
	GustSpeedKnots         *float64
	CeilingFeet            *float64
	Conditions             string
	Thunderstorms          bool
	Icing                  bool
}

// Location is the coordinate triple embedded in a booking.
type Location struct {
	Lat  float64
	Lon  float64
	Name string
}
