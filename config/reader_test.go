package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func TestFromReaderValidate(t *testing.T) {
	logger := golog.NewTestLogger(t)
	_, err := FromReader("somepath", strings.NewReader(""), logger)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = FromReader("somepath", strings.NewReader(`{"gait": 1}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "decode")

	_, err = FromReader("somepath", strings.NewReader(`{}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"base_link" is required`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"leg_names" is required`)
	test.That(t, err.Error(), test.ShouldContainSubstring, "frequency_hz")
}

func TestReadSampleConfig(t *testing.T) {
	t.Setenv("QUADRUPED_VX", "0.25")
	logger := golog.NewTestLogger(t)
	cfg, err := Read(filepath.Join("..", "etc", "configs", "trot.json5"), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.BaseLink, test.ShouldEqual, "trunk")
	test.That(t, cfg.Gait.TStance, test.ShouldEqual, 0.6)
	test.That(t, cfg.RobotCmd.LinearVelocity[0], test.ShouldEqual, 0.25)
	test.That(t, cfg.ConfigFilePath, test.ShouldContainSubstring, "trot.json5")

	os.Unsetenv("QUADRUPED_VX")
	cfg, err = Read(filepath.Join("..", "etc", "configs", "trot.json5"), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.RobotCmd.LinearVelocity[0], test.ShouldEqual, 0.0)

	_, err = Read(filepath.Join(t.TempDir(), "missing.json5"), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReadJSON5Features(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pace.json5")
	data := `
	// comments, unquoted keys and trailing commas
	{
	  base_link: "trunk",
	  legs: { leg_names: ["rl", "fl", "rr", "fr"], },
	  joints: {
	    num_joints: 12,
	    joint_names: ["a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"],
	    init_joint_positions: [0, 0.7, -1.4, 0, 0.7, -1.4, 0, 0.7, -1.4, 0, 0.7, -1.4],
	  },
	  gait: { t_stance: 0.5, t_swing: 0.5, height: 0.1, preset: "pace" },
	  control: { frequency_hz: 200 },
	}`
	test.That(t, os.WriteFile(path, []byte(data), 0o600), test.ShouldBeNil)

	cfg, err := Read(path, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Gait.Preset, test.ShouldEqual, "pace")
	test.That(t, cfg.Control.Period().Milliseconds(), test.ShouldEqual, 5)
}
