package trace

import (
	"fmt"

	"github.com/penwyp/go-mouse-recorder/internal/core/model"
)

// Rules checked by Validate.
const (
	RuleMonotonic   = "monotonic"
	RuleAlternation = "alternation"
)

// Violation is a captured-trace invariant broken at Index.
type Violation struct {
	Index  int
	Rule   string
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("event %d: %s: %s", v.Index, v.Rule, v.Detail)
}

// Validate checks that timestamps never decrease and that each button's
// edges alternate starting with a down edge. Traces written by the capture
// engine always pass; hand-edited or foreign traces may not.
func Validate(events []model.Event) []Violation {
	var violations []Violation
	pressed := map[model.Button]bool{}

	for i, ev := range events {
		if i > 0 && ev.Timestamp < events[i-1].Timestamp {
			violations = append(violations, Violation{
				Index:  i,
				Rule:   RuleMonotonic,
				Detail: fmt.Sprintf("timestamp %.4f before %.4f", ev.Seconds(), events[i-1].Seconds()),
			})
		}

		button, transition, ok := ev.Kind.Button()
		if !ok {
			continue
		}
		down := transition == model.TransitionDown
		if pressed[button] == down {
			violations = append(violations, Violation{
				Index:  i,
				Rule:   RuleAlternation,
				Detail: fmt.Sprintf("%s follows %s %s", ev.Kind, button, stateName(pressed[button])),
			})
		}
		pressed[button] = down
	}
	return violations
}

func stateName(down bool) string {
	if down {
		return "down"
	}
	return "up"
}
