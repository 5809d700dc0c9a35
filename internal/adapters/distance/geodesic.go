package distance

import (
	"math"
	"warehouse-route-optimizer/internal/domain"
)

// WGS-84 ellipsoid.
const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563
	wgs84B = wgs84A * (1 - wgs84F)

	meanEarthRadiusKm = 6371.0088
	maxIterations     = 200
)

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// Geodesic returns the ellipsoidal distance in kilometers between two points
// using Vincenty's inverse formula on WGS-84. Nearly antipodal pairs, where
// the iteration does not converge, fall back to Haversine.
func Geodesic(p1, p2 domain.Point) float64 {
	if p1 == p2 {
		return 0
	}

	l := rad(p2.Lon - p1.Lon)
	u1 := math.Atan((1 - wgs84F) * math.Tan(rad(p1.Lat)))
	u2 := math.Atan((1 - wgs84F) * math.Tan(rad(p2.Lat)))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := l
	for i := 0; i < maxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		x := cosU2 * sinLambda
		y := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma := math.Sqrt(x*x + y*y)
		if sinSigma == 0 {
			return 0
		}
		cosSigma := sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma := math.Atan2(sinSigma, cosSigma)

		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha := 1 - sinAlpha*sinAlpha
		cos2SigmaM := 0.0
		// Equatorial lines have cosSqAlpha == 0.
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}

		c := wgs84F / 16 * cosSqAlpha * (4 + wgs84F*(4-3*cosSqAlpha))
		prev := lambda
		lambda = l + (1-c)*wgs84F*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(lambda-prev) < 1e-12 {
			uSq := cosSqAlpha * (wgs84A*wgs84A - wgs84B*wgs84B) / (wgs84B * wgs84B)
			a := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
			b := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
			deltaSigma := b * sinSigma * (cos2SigmaM + b/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
				b/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
			return wgs84B * a * (sigma - deltaSigma) / 1000
		}
	}

	return Haversine(p1, p2)
}

// Haversine returns the great-circle distance in kilometers on a sphere with
// the mean Earth radius.
func Haversine(p1, p2 domain.Point) float64 {
	dLat := rad(p2.Lat - p1.Lat)
	dLon := rad(p2.Lon - p1.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(p1.Lat))*math.Cos(rad(p2.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * meanEarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
