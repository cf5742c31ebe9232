package leg

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestParse(t *testing.T) {
	for _, id := range All {
		parsed, err := Parse(id.String())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, id)
	}

	parsed, err := Parse("fr")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, parsed, test.ShouldEqual, FR)

	_, err = Parse("LM")
	test.That(t, errors.Is(err, ErrNotFound), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "LM")
}

func TestOrder(t *testing.T) {
	test.That(t, Names(), test.ShouldResemble, []string{"RL", "FL", "RR", "FR"})
	test.That(t, FL.JointIndex(0), test.ShouldEqual, 3)
	test.That(t, FR.JointIndex(2), test.ShouldEqual, 11)
	test.That(t, RL.Left(), test.ShouldBeTrue)
	test.That(t, RR.Left(), test.ShouldBeFalse)
	test.That(t, FR.Front(), test.ShouldBeTrue)
	test.That(t, ID(7).Valid(), test.ShouldBeFalse)
	test.That(t, ID(7).String(), test.ShouldEqual, "leg(7)")
}
