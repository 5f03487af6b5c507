// Package testcase loads test case files and validates them against the
// test case JSON Schema.
package testcase

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/schema"
	"gopkg.in/yaml.v3"
)

// SchemaID identifies the test case schema.
const SchemaID = "https://stepwright.dev/schemas/test-case.json"

// DefaultDir is where test cases are looked up when no path is given.
const DefaultDir = "testcase"

var (
	validatorOnce sync.Once
	validator     *schema.Validator
	validatorErr  error
)

func caseValidator() (*schema.Validator, error) {
	validatorOnce.Do(func() {
		validator, validatorErr = schema.New(&model.TestCase{}, SchemaID, "Test case")
	})
	return validator, validatorErr
}

// Schema returns the JSON Schema document of one test case.
func Schema() ([]byte, error) {
	v, err := caseValidator()
	if err != nil {
		return nil, err
	}
	return v.Document(), nil
}

// Load reads test cases from a file or, for a directory, from every
// .json, .yaml and .yml file in it in name order. IDs must be unique across
// everything loaded.
func Load(path string) ([]model.TestCase, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	files := []string{path}
	if info.IsDir() {
		files, err = caseFiles(path)
		if err != nil {
			return nil, err
		}
	}

	var cases []model.TestCase
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		loaded, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		cases = append(cases, loaded...)
	}
	if err := checkUnique(cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func caseFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Parse decodes JSON or YAML holding a list of cases, an object with a
// "test_cases" list, or a single case.
func Parse(data []byte) ([]model.TestCase, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse test cases: %w", err)
	}

	var items []interface{}
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		items = v
	case map[string]interface{}:
		if list, ok := v["test_cases"]; ok {
			l, ok := list.([]interface{})
			if !ok {
				return nil, fmt.Errorf("test_cases must be a list")
			}
			items = l
		} else {
			items = []interface{}{v}
		}
	default:
		return nil, fmt.Errorf("expected a list or an object of test cases, got %T", doc)
	}

	v, err := caseValidator()
	if err != nil {
		return nil, err
	}
	cases := make([]model.TestCase, 0, len(items))
	for i, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i+1, err)
		}
		if err := v.ValidateJSON(raw); err != nil {
			return nil, fmt.Errorf("case %d: %w", i+1, err)
		}
		var tc model.TestCase
		if err := json.Unmarshal(raw, &tc); err != nil {
			return nil, fmt.Errorf("case %d: %w", i+1, err)
		}
		if tc.Name == "" {
			tc.Name = tc.ID
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

func checkUnique(cases []model.TestCase) error {
	seen := make(map[string]bool, len(cases))
	for _, tc := range cases {
		if seen[tc.ID] {
			return fmt.Errorf("duplicate test case id %q", tc.ID)
		}
		seen[tc.ID] = true
	}
	return nil
}

// Defaults returns the sample cases used when no test case files exist.
func Defaults() []model.TestCase {
	return []model.TestCase{
		{
			ID:          "TC001",
			Name:        "访问百度首页",
			Description: "打开百度网站首页，验证页面标题包含'百度'",
			Steps: []string{
				"导航到 https://www.baidu.com",
				"验证页面标题包含'百度'",
			},
		},
		{
			ID:          "TC002",
			Name:        "搜索功能测试",
			Description: "在百度搜索框中输入'Playwright'并搜索，验证搜索结果页面",
			Steps: []string{
				"导航到 https://www.baidu.com",
				"找到搜索框并输入'Playwright'",
				"点击搜索按钮",
				"等待搜索结果加载",
				"验证搜索结果页面包含相关内容",
			},
		},
	}
}
