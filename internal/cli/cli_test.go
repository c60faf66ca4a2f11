package cli

import (
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"rsmerge": Run,
	}))
}

// TestCLI runs all testscript tests in the testdata directory.
func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			env.Setenv("NO_COLOR", "1")
			env.Setenv("RSMERGE_LOG_LEVEL", "warn")
			return nil
		},
	})
}
