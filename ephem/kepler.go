package ephem

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/helioforge/exploration-simulator/model"
)

const (
	j2000Epoch     = 2451545.0
	daysPerCentury = 36525.0
)

// Elements is a set of mean Keplerian orbital elements at the J2000 epoch
// plus linear rates per Julian century. Distances are AU, angles degrees.
type Elements struct {
	A  float64 // semi-major axis
	E  float64 // eccentricity
	I  float64 // inclination
	L  float64 // mean longitude
	LP float64 // longitude of perihelion
	N  float64 // longitude of ascending node

	DA  float64
	DE  float64
	DI  float64
	DL  float64
	DLP float64
	DN  float64
}

// planets holds the built-in heliocentric element table. Catalog entries
// reference rows by ephemeris index; the order is Mercury through Pluto.
var planets = [...]Elements{
	{A: 0.38709843, E: 0.20563661, I: 7.00559432, L: 252.25166724, LP: 77.45771895, N: 48.33961819,
		DA: 0.00000000, DE: 0.00002123, DI: -0.00590158, DL: 149472.67486623, DLP: 0.15940013, DN: -0.12214182},
	{A: 0.72333566, E: 0.00677672, I: 3.39467605, L: 181.97970850, LP: 131.76755713, N: 76.67984255,
		DA: 0.00000390, DE: -0.00004107, DI: -0.00078890, DL: 58517.81538729, DLP: 0.05679648, DN: -0.27769418},
	{A: 1.00000261, E: 0.01671123, I: -0.00001531, L: 100.46457166, LP: 102.93768193, N: 0.0,
		DA: 0.00000562, DE: -0.00004392, DI: -0.01294668, DL: 35999.37306329, DLP: 0.32327364, DN: 0.0},
	{A: 1.52371034, E: 0.09339410, I: 1.84969142, L: -4.55343205, LP: -23.94362959, N: 49.55953891,
		DA: 0.00001847, DE: 0.00007882, DI: -0.00813131, DL: 19140.30268499, DLP: 0.44441088, DN: -0.29257343},
	{A: 5.20288700, E: 0.04838624, I: 1.30439695, L: 34.39644051, LP: 14.72847983, N: 100.47390909,
		DA: -0.00011607, DE: -0.00013253, DI: -0.00183714, DL: 3034.74612775, DLP: 0.21252668, DN: 0.20469106},
	{A: 9.53667594, E: 0.05386179, I: 2.48599187, L: 49.95424423, LP: 92.59887831, N: 113.66242448,
		DA: -0.00125060, DE: -0.00050991, DI: 0.00193609, DL: 1222.49362201, DLP: -0.41897216, DN: -0.28867794},
	{A: 19.18916464, E: 0.04725744, I: 0.77263783, L: 313.23810451, LP: 170.95427630, N: 74.01692503,
		DA: -0.00196176, DE: -0.00004397, DI: -0.00242939, DL: 428.48202785, DLP: 0.40805281, DN: 0.04240589},
	{A: 30.06992276, E: 0.00859048, I: 1.77004347, L: -55.12002969, LP: 44.96476227, N: 131.78422574,
		DA: 0.00026291, DE: 0.00005105, DI: 0.00035372, DL: 218.45945325, DLP: -0.32241464, DN: -0.00508664},
	{A: 39.48211675, E: 0.24882730, I: 17.14001206, L: 238.92881780, LP: 224.06891629, N: 110.30393684,
		DA: -0.00031596, DE: 0.00005170, DI: 0.00004818, DL: 145.20780515, DLP: -0.04062942, DN: -0.01183482},
}

// PlanetCount is the number of rows in the built-in element table.
const PlanetCount = len(planets)

// PlanetElements returns the built-in element table row for an ephemeris
// index (0 = Mercury .. 8 = Pluto).
func PlanetElements(index int) (Elements, error) {
	if index < 0 || index >= len(planets) {
		return Elements{}, fmt.Errorf("ephemeris index %d out of range [0,%d)", index, len(planets))
	}
	return planets[index], nil
}

// KeplerianOrbit positions a body on a heliocentric orbit computed from
// mean elements. The orbit is relative to the scene origin (the Sun).
type KeplerianOrbit struct {
	el        Elements
	kmPerUnit float64
}

// NewKeplerian constructs a heliocentric provider from an element set.
func NewKeplerian(el Elements, kmPerUnit float64) *KeplerianOrbit {
	if kmPerUnit <= 0 {
		kmPerUnit = model.DefaultKmPerUnit
	}
	return &KeplerianOrbit{el: el, kmPerUnit: kmPerUnit}
}

// Position implements Provider.
func (k *KeplerianOrbit) Position(t time.Time) mgl64.Vec3 {
	T := centuriesSinceJ2000(t)

	a := k.el.A + T*k.el.DA
	e := k.el.E + T*k.el.DE
	i := degToRad(k.el.I + T*k.el.DI)
	L := degToRad(normalizeDegrees(k.el.L + T*k.el.DL))
	lp := degToRad(normalizeDegrees(k.el.LP + T*k.el.DLP))
	node := degToRad(normalizeDegrees(k.el.N + T*k.el.DN))

	M := normalizeRadians(L - lp)
	w := normalizeRadians(lp - node)

	E := solveKepler(M, e)

	// True anomaly and heliocentric distance.
	v := 2.0 * math.Atan2(
		math.Sqrt(1.0+e)*math.Sin(E/2.0),
		math.Sqrt(1.0-e)*math.Cos(E/2.0),
	)
	r := a * (1.0 - e*math.Cos(E))

	xOrb := r * math.Cos(v)
	yOrb := r * math.Sin(v)

	// Rotate the orbital plane into the ecliptic frame: argument of
	// perihelion about z, inclination about x, ascending node about z.
	xw := xOrb*math.Cos(w) - yOrb*math.Sin(w)
	yw := xOrb*math.Sin(w) + yOrb*math.Cos(w)

	xi := xw
	yi := yw * math.Cos(i)
	zi := yw * math.Sin(i)

	x := xi*math.Cos(node) - yi*math.Sin(node)
	y := xi*math.Sin(node) + yi*math.Cos(node)
	z := zi

	scale := model.KmPerAU / k.kmPerUnit
	return eclipticToScene(x*scale, y*scale, z*scale)
}

// solveKepler finds the eccentric anomaly for mean anomaly M and
// eccentricity e using Danby's starter and Newton-Raphson refinement.
func solveKepler(M, e float64) float64 {
	var E float64
	if e < 0.8 {
		E = M + e*math.Sin(M)*(1.0+e*math.Cos(M))
	} else {
		E = M + e*math.Sin(M)/(1.0-math.Sin(M+e)+math.Sin(M))
	}

	for iter := 0; iter < 15; iter++ {
		diff := E - e*math.Sin(E) - M
		if math.Abs(diff) < 1e-14 {
			break
		}
		E -= diff / (1.0 - e*math.Cos(E))
	}

	return normalizeRadians(E)
}

// julianDate converts a time to a Julian date (Meeus, Astronomical
// Algorithms ch. 7).
func julianDate(t time.Time) float64 {
	t = t.UTC()

	Y := float64(t.Year())
	M := float64(t.Month())
	D := float64(t.Day())

	dayFraction := float64(t.Hour())/24.0 +
		float64(t.Minute())/1440.0 +
		(float64(t.Second())+float64(t.Nanosecond())/1e9)/model.SecondsPerDay

	if M <= 2 {
		Y--
		M += 12
	}

	A := math.Floor(Y / 100.0)
	B := 2 - A + math.Floor(A/4.0)

	return math.Floor(365.25*(Y+4716)) + math.Floor(30.6001*(M+1)) + D + B - 1524.5 + dayFraction
}

func centuriesSinceJ2000(t time.Time) float64 {
	return (julianDate(t) - j2000Epoch) / daysPerCentury
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func normalizeRadians(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}

func normalizeDegrees(angle float64) float64 {
	angle = math.Mod(angle, 360.0)
	if angle < 0 {
		angle += 360.0
	}
	return angle
}
