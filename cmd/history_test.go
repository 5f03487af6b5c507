package cmd

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/output"
	"github.com/mj1618/stepwright/internal/resolver"
	"github.com/spf13/cobra"
)

func TestHistoryEntries(t *testing.T) {
	got := historyEntries([]model.RunRecord{
		{RunID: "b", Total: 3, Passed: 2, Failed: 1},
		{RunID: "a"},
	})
	var rates []string
	for _, e := range got {
		rates = append(rates, e.PassRate)
	}
	if diff := cmp.Diff([]string{"66.7%", "0.0%"}, rates); diff != "" {
		t.Errorf("pass rates mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveSteps(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	got := resolveSteps(cmd, resolver.New(nil), []string{"导航到 https://www.baidu.com", "看一看"})
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	want := model.Navigate("https://www.baidu.com")
	want.Source = model.SourceKeyword
	if diff := cmp.Diff(output.ResolvedStep{Step: "导航到 https://www.baidu.com", Action: &want}, got[0]); diff != "" {
		t.Errorf("navigate step mismatch (-want +got):\n%s", diff)
	}
	if got[1].Action != nil || got[1].ErrorKind != model.ErrUnresolvedStep {
		t.Errorf("free-form step = %+v, want UnresolvedStep", got[1])
	}
}
