// Package kinematics implements closed form kinematics for a three joint quadruped leg:
// forward position, the velocity Jacobian, geometric inverse position and the static
// force to torque map.
//
// Joint 1 rotates about the fore-aft (x) axis and offsets the two link pitch-plane arm
// formed by joints 2 and 3. Link lengths are signed; the signs mirror the chain between
// the left and right legs, and the hip offset says which corner of the body the leg is
// mounted on.
package kinematics

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"go.viam.com/quadruped/leg"
)

// LegGeometry is the fixed description of one leg.
type LegGeometry struct {
	// HipOffset is the body frame translation from the body origin to the hip.
	HipOffset r3.Vector
	// Links are the signed lengths l1 (abduction offset), l2 (thigh), l3 (shank).
	Links [3]float64
}

// Geometry holds every leg, indexed by leg.ID.
type Geometry [leg.Count]LegGeometry

// Default dimensions of the reference robot, in meters.
const (
	DefaultHipX = 0.196
	DefaultHipY = 0.050
	DefaultL1   = 0.077
	DefaultL2   = 0.211
	DefaultL3   = 0.230
)

// DefaultGeometry returns the geometry of the reference robot.
func DefaultGeometry() Geometry {
	return NewSymmetricGeometry(r3.Vector{X: DefaultHipX, Y: DefaultHipY}, DefaultL1, DefaultL2, DefaultL3)
}

// NewSymmetricGeometry mirrors one set of magnitudes onto the four corners. hip holds the
// unsigned x/y distances of the hips from the body origin (z is used as given). The left
// legs get links {l1, -l2, -l3}, the right legs {-l1, -l2, -l3}.
func NewSymmetricGeometry(hip r3.Vector, l1, l2, l3 float64) Geometry {
	left := [3]float64{l1, -l2, -l3}
	right := [3]float64{-l1, -l2, -l3}

	var g Geometry
	g[leg.RL] = LegGeometry{HipOffset: r3.Vector{X: -hip.X, Y: hip.Y, Z: hip.Z}, Links: left}
	g[leg.FL] = LegGeometry{HipOffset: r3.Vector{X: hip.X, Y: hip.Y, Z: hip.Z}, Links: left}
	g[leg.RR] = LegGeometry{HipOffset: r3.Vector{X: -hip.X, Y: -hip.Y, Z: hip.Z}, Links: right}
	g[leg.FR] = LegGeometry{HipOffset: r3.Vector{X: hip.X, Y: -hip.Y, Z: hip.Z}, Links: right}
	return g
}

// Validate checks that every leg can be solved by LegInverseKinematics.
func (g Geometry) Validate() error {
	for _, id := range leg.All {
		links := g[id].Links
		for i, l := range links {
			if l == 0 {
				return errors.Errorf("leg %s: link %d has zero length", id, i+1)
			}
		}
		if (links[1] > 0) != (links[2] > 0) {
			return errors.Errorf("leg %s: thigh and shank lengths must share a sign, got %v and %v", id, links[1], links[2])
		}
	}
	return nil
}

// NominalHip is the body frame point a straight leg stands under: the hip offset moved
// out by the abduction link.
func (g Geometry) NominalHip(id leg.ID) r3.Vector {
	return g[id].HipOffset.Add(r3.Vector{Y: g[id].Links[0]})
}

// String prints out a table of each leg, with columns of name, hip offset and links.
func (g Geometry) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Leg", "Hip offset", "Links"})
	for _, id := range leg.All {
		h := g[id].HipOffset
		l := g[id].Links
		t.AppendRow(table.Row{
			id.String(),
			fmt.Sprintf("(%.3f, %.3f, %.3f)", h.X, h.Y, h.Z),
			fmt.Sprintf("(%.3f, %.3f, %.3f)", l[0], l[1], l[2]),
		})
	}
	return t.Render()
}
