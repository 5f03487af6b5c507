package testcase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mj1618/stepwright/internal/model"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParse_Shapes(t *testing.T) {
	login := model.TestCase{ID: "TC010", Name: "登录", Steps: []string{"导航到 https://example.com/login", "点击登录"}}

	tests := []struct {
		name string
		doc  string
	}{
		{"json list", `[{"id":"TC010","name":"登录","steps":["导航到 https://example.com/login","点击登录"]}]`},
		{"json wrapped", `{"test_cases":[{"id":"TC010","name":"登录","steps":["导航到 https://example.com/login","点击登录"]}]}`},
		{"json single", `{"id":"TC010","name":"登录","steps":["导航到 https://example.com/login","点击登录"]}`},
		{"yaml list", "- id: TC010\n  name: 登录\n  steps:\n    - 导航到 https://example.com/login\n    - 点击登录\n"},
		{"extra fields", `{"id":"TC010","name":"登录","priority":"high","steps":["导航到 https://example.com/login","点击登录"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if diff := cmp.Diff([]model.TestCase{login}, got); diff != "" {
				t.Errorf("cases mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"missing id", `[{"name":"x","steps":[]}]`, "case 1"},
		{"empty id", `[{"id":"","name":"x","steps":[]}]`, "case 1"},
		{"steps not list", `{"id":"TC1","name":"x","steps":"click"}`, "case 1"},
		{"second bad", `[{"id":"TC1","name":"x","steps":[]},{"id":"TC2","name":"y"}]`, "case 2"},
		{"scalar", `42`, "expected a list"},
		{"bad wrapper", `{"test_cases":"nope"}`, "test_cases must be a list"},
		{"syntax", `[{"id":`, "parse test cases"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "id: TC002\nname: second\nsteps: [等待2秒]\n")
	writeFile(t, dir, "a.json", `[{"id":"TC001","name":"first","steps":["点击登录"]}]`)
	writeFile(t, dir, "notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var ids []string
	for _, tc := range got {
		ids = append(ids, tc.ID)
	}
	if diff := cmp.Diff([]string{"TC001", "TC002"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_DuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"id":"TC001","name":"a","steps":[]}`)
	writeFile(t, dir, "b.json", `{"id":"TC001","name":"b","steps":[]}`)

	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), `duplicate test case id "TC001"`) {
		t.Fatalf("err = %v, want duplicate id error", err)
	}
}

func TestLoad_FileErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "broken.json", `{"name":"no id","steps":[]}`)

	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), "broken.json") {
		t.Fatalf("err = %v, want file name in error", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); !os.IsNotExist(err) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["$id"] != SchemaID {
		t.Errorf("$id = %v", doc["$id"])
	}
	props, _ := doc["properties"].(map[string]interface{})
	for _, key := range []string{"id", "name", "description", "steps"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}
}

func TestDefaults_Valid(t *testing.T) {
	data, err := json.Marshal(Defaults())
	if err != nil {
		t.Fatal(err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if diff := cmp.Diff(Defaults(), got); diff != "" {
		t.Errorf("defaults round trip (-want +got):\n%s", diff)
	}
}
