package avionics

import "math"

const earthRadiusNM = 3440.065

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

// normalizeDeg wraps an angle into [0, 360).
func normalizeDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// angleDiffDeg returns the signed shortest difference a-b in (-180, 180].
func angleDiffDeg(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}

// greatCircleNM returns the great-circle distance between two coordinates
// in nautical miles.
func greatCircleNM(lat1, lon1, lat2, lon2 float64) float64 {
	φ1, λ1 := deg2rad(lat1), deg2rad(lon1)
	φ2, λ2 := deg2rad(lat2), deg2rad(lon2)

	sinΔφ := math.Sin((φ2 - φ1) / 2)
	sinΔλ := math.Sin((λ2 - λ1) / 2)
	a := sinΔφ*sinΔφ + math.Cos(φ1)*math.Cos(φ2)*sinΔλ*sinΔλ
	return 2 * earthRadiusNM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// initialBearingDeg returns the initial great-circle bearing from point 1
// to point 2, degrees true in [0, 360).
func initialBearingDeg(lat1, lon1, lat2, lon2 float64) float64 {
	φ1, φ2 := deg2rad(lat1), deg2rad(lat2)
	Δλ := deg2rad(lon2 - lon1)

	y := math.Sin(Δλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	return normalizeDeg(rad2deg(math.Atan2(y, x)))
}

// crossTrackNM returns the signed cross-track distance of a position from
// the great-circle leg between two waypoints. Negative is left of course.
func crossTrackNM(legLat1, legLon1, legLat2, legLon2, lat, lon float64) float64 {
	d13 := greatCircleNM(legLat1, legLon1, lat, lon) / earthRadiusNM
	θ13 := deg2rad(initialBearingDeg(legLat1, legLon1, lat, lon))
	θ12 := deg2rad(initialBearingDeg(legLat1, legLon1, legLat2, legLon2))
	return math.Asin(math.Sin(d13)*math.Sin(θ13-θ12)) * earthRadiusNM
}
