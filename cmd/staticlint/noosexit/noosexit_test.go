package noosexit

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"
)

// Test runs the noosexit Analyzer against test data using analysistest.
// Only calls made directly by main.main are reported.
func Test(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), Analyzer, "exitinmain", "exitelsewhere", "renamedimport")
}
