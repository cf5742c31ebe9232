// Package leg names the four legs of the quadruped and fixes their order.
//
// The order RL, FL, RR, FR is load bearing: it is the layout of the 12 element joint
// vector (three joints per leg) and of the gait phase offset vector. Every per-leg
// table in this module is a [Count]T indexed by ID.
package leg

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ID identifies one leg.
type ID int

// The legs, in joint vector order.
const (
	RL ID = iota // rear left
	FL           // front left
	RR           // rear right
	FR           // front right
)

// Count is the number of legs.
const Count = 4

// JointsPerLeg is the number of joints on each leg (hip abduction, hip pitch, knee).
const JointsPerLeg = 3

// All lists every leg in joint vector order.
var All = [Count]ID{RL, FL, RR, FR}

var names = [Count]string{"RL", "FL", "RR", "FR"}

// ErrNotFound is the "LegNotFound" error kind. Seeing it means a caller or a
// data table disagrees with the fixed leg set, not a condition to recover from.
var ErrNotFound = errors.New("leg not found")

// NewNotFoundError returns an ErrNotFound annotated with what was looked up.
func NewNotFoundError(what interface{}) error {
	return errors.Wrapf(ErrNotFound, "%v", what)
}

// Parse returns the ID for a leg name such as "FL". Matching ignores case.
func Parse(name string) (ID, error) {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return ID(i), nil
		}
	}
	return 0, NewNotFoundError(name)
}

// Valid reports whether id is one of the four legs.
func (id ID) Valid() bool {
	return id >= 0 && id < Count
}

// String returns the short leg name.
func (id ID) String() string {
	if !id.Valid() {
		return "leg(" + strconv.Itoa(int(id)) + ")"
	}
	return names[id]
}

// Left reports whether the leg is on the left side of the body.
func (id ID) Left() bool {
	return id == RL || id == FL
}

// Front reports whether the leg is at the front of the body.
func (id ID) Front() bool {
	return id == FL || id == FR
}

// JointIndex returns the index into a joint vector of joint j (0..2) of this leg.
func (id ID) JointIndex(j int) int {
	return int(id)*JointsPerLeg + j
}

// Names returns the leg names in order.
func Names() []string {
	return append([]string(nil), names[:]...)
}
