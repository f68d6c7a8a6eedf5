package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/helioforge/exploration-simulator/ephem"
	"github.com/helioforge/exploration-simulator/model"
)

// CatalogSummary is a small summary of what was loaded from JSON.
// It's mainly useful for logging from main().
type CatalogSummary struct {
	BodyNames []string
}

// internal JSON shapes - kept unexported so we're free to evolve them.
type catalogJSON struct {
	Bodies []bodyJSON `json:"bodies"`
}

type bodyJSON struct {
	Name               string  `json:"name"`
	Kind               string  `json:"kind"` // star | planet | dwarf_planet | moon | station
	RadiusKm           float64 `json:"radius_km"`
	RotationPeriodDays float64 `json:"rotation_period_days"`
	Collideable        *bool   `json:"collideable"` // optional; defaults to true

	// Exactly one motion source applies, checked in this order.
	EphemerisIndex *int         `json:"ephemeris_index"` // built-in heliocentric table
	TLELine1       string       `json:"tle_line1"`       // SGP4, needs parent
	TLELine2       string       `json:"tle_line2"`
	Orbit          *orbitJSON   `json:"orbit"` // generated circular orbit, needs parent
	Position       *vectorJSON  `json:"position"`

	Parent   string      `json:"parent"` // must be declared earlier in the catalog
	Children []childJSON `json:"children"`
}

type orbitJSON struct {
	RadiusKm   float64 `json:"radius_km"`
	PeriodDays float64 `json:"period_days"`
	PhaseDeg   float64 `json:"phase_deg"`
}

type vectorJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type childJSON struct {
	Name   string     `json:"name"`
	Offset vectorJSON `json:"offset"`
}

// LoadCatalog reads a JSON body catalog from r, registers every body and
// initializes positions at the given simulated start time. Bodies whose
// motion derives from a parent (stations, generated orbits) must appear
// after that parent in the catalog.
//
// It fails on JSON / structural errors and on registry invariant
// violations (duplicate names, non-positive radii), since a partially
// loaded catalog is not a usable scene.
func LoadCatalog(reg *Registry, r io.Reader, start time.Time) (*CatalogSummary, error) {
	if reg == nil {
		return nil, fmt.Errorf("LoadCatalog: registry is nil")
	}

	var payload catalogJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadCatalog: decode failed: %w", err)
	}

	summary := &CatalogSummary{BodyNames: make([]string, 0, len(payload.Bodies))}
	providers := make(map[string]ephem.Provider, len(payload.Bodies))

	for _, jb := range payload.Bodies {
		if jb.Name == "" {
			return nil, fmt.Errorf("LoadCatalog: body with empty name")
		}

		provider, err := providerFor(jb, providers, reg.KmPerUnit())
		if err != nil {
			return nil, err
		}

		collideable := true
		if jb.Collideable != nil {
			collideable = *jb.Collideable
		}

		b := &model.Body{
			Name:               jb.Name,
			Kind:               kindFromString(jb.Kind),
			RadiusKm:           jb.RadiusKm,
			RotationPeriodDays: jb.RotationPeriodDays,
			Collideable:        collideable,
		}
		for _, jc := range jb.Children {
			b.Children = append(b.Children, model.Child{
				Name:   jc.Name,
				Offset: mgl64.Vec3{jc.Offset.X, jc.Offset.Y, jc.Offset.Z},
			})
		}

		if provider != nil {
			b.Position = provider.Position(start)
			providers[jb.Name] = provider
			if _, static := provider.(ephem.Static); !static {
				b.Ephemeris = provider.Position
			}
		}

		if err := reg.Add(b); err != nil {
			return nil, fmt.Errorf("LoadCatalog: %w", err)
		}
		summary.BodyNames = append(summary.BodyNames, jb.Name)
	}

	reg.MoveBodyChildren()
	return summary, nil
}

// providerFor builds the motion source for one catalog entry.
func providerFor(jb bodyJSON, providers map[string]ephem.Provider, kmPerUnit float64) (ephem.Provider, error) {
	switch {
	case jb.EphemerisIndex != nil:
		el, err := ephem.PlanetElements(*jb.EphemerisIndex)
		if err != nil {
			return nil, fmt.Errorf("LoadCatalog: body %q: %w", jb.Name, err)
		}
		return ephem.NewKeplerian(el, kmPerUnit), nil

	case jb.TLELine1 != "" && jb.TLELine2 != "":
		parent, err := parentProvider(jb, providers)
		if err != nil {
			return nil, err
		}
		return ephem.NewSGP4FromTLE(jb.TLELine1, jb.TLELine2, parent, kmPerUnit), nil

	case jb.Orbit != nil:
		parent, err := parentProvider(jb, providers)
		if err != nil {
			return nil, err
		}
		return ephem.NewCircularOrbit(
			parent,
			model.KmToUnits(jb.Orbit.RadiusKm, kmPerUnit),
			jb.Orbit.PeriodDays*model.SecondsPerDay,
			jb.Orbit.PhaseDeg*math.Pi/180.0,
		), nil

	case jb.Position != nil:
		return ephem.Static{At: mgl64.Vec3{jb.Position.X, jb.Position.Y, jb.Position.Z}}, nil

	default:
		// No motion source: the body stays at the origin.
		return ephem.Static{}, nil
	}
}

func parentProvider(jb bodyJSON, providers map[string]ephem.Provider) (ephem.Provider, error) {
	if jb.Parent == "" {
		return nil, nil
	}
	parent, ok := providers[jb.Parent]
	if !ok {
		return nil, fmt.Errorf("LoadCatalog: body %q references unknown parent %q", jb.Name, jb.Parent)
	}
	return parent, nil
}

// kindFromString maps the JSON "kind" string to model.BodyKind.
//
// Kept tolerant: unknown values load as KindUnknown rather than failing,
// since the kind only affects display grouping.
func kindFromString(s string) model.BodyKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "star":
		return model.KindStar
	case "planet":
		return model.KindPlanet
	case "dwarf_planet", "dwarf":
		return model.KindDwarfPlanet
	case "moon":
		return model.KindMoon
	case "station", "spacecraft", "satellite":
		return model.KindStation
	default:
		return model.KindUnknown
	}
}
