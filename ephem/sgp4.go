package ephem

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/helioforge/exploration-simulator/model"
)

// SGP4Orbit propagates an artificial satellite from a TLE and anchors it
// to its parent body's position. go-satellite works in kilometres from
// the Earth's centre; the offset is converted to scene units.
type SGP4Orbit struct {
	sat       satellite.Satellite
	parent    Provider
	kmPerUnit float64
}

// NewSGP4FromTLE constructs a provider from two TLE lines. parent supplies
// the orbited body's scene position each tick; nil anchors the orbit to
// the scene origin.
func NewSGP4FromTLE(line1, line2 string, parent Provider, kmPerUnit float64) *SGP4Orbit {
	if kmPerUnit <= 0 {
		kmPerUnit = model.DefaultKmPerUnit
	}
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &SGP4Orbit{sat: sat, parent: parent, kmPerUnit: kmPerUnit}
}

// Position implements Provider.
func (o *SGP4Orbit) Position(t time.Time) mgl64.Vec3 {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(o.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	offset := eclipticToScene(
		posECEF.X/o.kmPerUnit,
		posECEF.Y/o.kmPerUnit,
		posECEF.Z/o.kmPerUnit,
	)

	if o.parent == nil {
		return offset
	}
	return o.parent.Position(t).Add(offset)
}
