package model

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the closed set of browser operations a step can resolve to.
type Kind string

const (
	KindNavigate Kind = "navigate"
	KindInput    Kind = "input"
	KindClick    Kind = "click"
	KindVerify   Kind = "verify"
	KindWait     Kind = "wait"
)

// Kinds lists every valid action kind in precedence order.
var Kinds = []Kind{KindNavigate, KindInput, KindClick, KindVerify, KindWait}

// ParseKind converts s to a Kind. Anything outside the closed set is an error.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown action kind %q (expected navigate, input, click, verify, or wait)", s)
}

// Source records how an action was resolved.
type Source string

const (
	SourceKeyword Source = "keyword"
	SourceModel   Source = "model"
)

// Action is the typed, executable interpretation of one step. Which payload
// fields are meaningful depends on Kind:
//
//	navigate  URL
//	input     Target, Value
//	click     Target
//	verify    Condition
//	wait      Duration or Condition
type Action struct {
	Kind      Kind          `yaml:"kind"                json:"kind"`
	URL       string        `yaml:"url,omitempty"       json:"url,omitempty"`
	Target    string        `yaml:"target,omitempty"    json:"target,omitempty"`
	Value     string        `yaml:"value,omitempty"     json:"value,omitempty"`
	Condition string        `yaml:"condition,omitempty" json:"condition,omitempty"`
	Duration  time.Duration `yaml:"duration,omitempty"  json:"duration,omitempty"`
	Source    Source        `yaml:"source,omitempty"    json:"source,omitempty"`
}

func Navigate(url string) Action { return Action{Kind: KindNavigate, URL: url} }

func Input(target, value string) Action {
	return Action{Kind: KindInput, Target: target, Value: value}
}

func Click(target string) Action { return Action{Kind: KindClick, Target: target} }

func Verify(condition string) Action { return Action{Kind: KindVerify, Condition: condition} }

// WaitFor is a fixed-duration wait.
func WaitFor(d time.Duration) Action { return Action{Kind: KindWait, Duration: d} }

// WaitUntil polls until condition holds on the page.
func WaitUntil(condition string) Action { return Action{Kind: KindWait, Condition: condition} }

// Validate checks that the payload required by the action's kind is present.
func (a Action) Validate() error {
	switch a.Kind {
	case KindNavigate:
		if a.URL == "" {
			return fmt.Errorf("navigate requires a url")
		}
	case KindInput:
		if a.Target == "" {
			return fmt.Errorf("input requires a target")
		}
	case KindClick:
		if a.Target == "" {
			return fmt.Errorf("click requires a target")
		}
	case KindVerify:
		if a.Condition == "" {
			return fmt.Errorf("verify requires a condition")
		}
	case KindWait:
		if a.Duration <= 0 && a.Condition == "" {
			return fmt.Errorf("wait requires a duration or a condition")
		}
	default:
		_, err := ParseKind(string(a.Kind))
		return err
	}
	return nil
}

func (a Action) String() string {
	switch a.Kind {
	case KindNavigate:
		return fmt.Sprintf("navigate(%s)", a.URL)
	case KindInput:
		return fmt.Sprintf("input(%q, %q)", a.Target, a.Value)
	case KindClick:
		return fmt.Sprintf("click(%q)", a.Target)
	case KindVerify:
		return fmt.Sprintf("verify(%q)", a.Condition)
	case KindWait:
		if a.Duration > 0 {
			return fmt.Sprintf("wait(%s)", a.Duration)
		}
		return fmt.Sprintf("wait(%q)", a.Condition)
	}
	return string(a.Kind)
}
