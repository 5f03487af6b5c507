package chrome

import (
	"strings"
	"testing"
)

func TestJSString_Escapes(t *testing.T) {
	got := jsString(`input[name="q"]`)
	if got != `"input[name=\"q\"]"` {
		t.Errorf("jsString = %s", got)
	}
}

func TestProbeScripts_TakeOneArgument(t *testing.T) {
	for name, script := range map[string]string{"click": clickProbe, "edit": editProbe} {
		if strings.Count(script, "%s") != 1 {
			t.Errorf("%s probe should have exactly one selector placeholder", name)
		}
		if !strings.Contains(script, `"missing"`) {
			t.Errorf("%s probe should report missing elements", name)
		}
	}
}
