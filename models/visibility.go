package models

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

type VisibilityState string

const (
	StateVisible     VisibilityState = "visible"
	StateQuarantined VisibilityState = "quarantined"
)

// Visibility is a tagged variant: a quarantine reason can only exist in the
// quarantined state. Build values through Visible or Quarantined; the zero
// value is visible.
type Visibility struct {
	state     VisibilityState
	reason    string
	updatedAt time.Time
}

func Visible() Visibility {
	return Visibility{state: StateVisible}
}

func Quarantined(reason string, at time.Time) Visibility {
	return Visibility{state: StateQuarantined, reason: reason, updatedAt: at}
}

func (v Visibility) State() VisibilityState {
	if v.state == "" {
		return StateVisible
	}
	return v.state
}

func (v Visibility) IsQuarantined() bool {
	return v.state == StateQuarantined
}

// Quarantine returns the reason and timestamp, with ok false in the visible
// state.
func (v Visibility) Quarantine() (reason string, at time.Time, ok bool) {
	if v.state != StateQuarantined {
		return "", time.Time{}, false
	}
	return v.reason, v.updatedAt, true
}

type visibilityJSON struct {
	State     VisibilityState `json:"state"`
	Reason    string          `json:"reason,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

func (v Visibility) MarshalJSON() ([]byte, error) {
	out := visibilityJSON{State: v.State()}
	if v.state == StateQuarantined {
		out.Reason = v.reason
		if !v.updatedAt.IsZero() {
			t := v.updatedAt
			out.UpdatedAt = &t
		}
	}
	return json.Marshal(out)
}

func (v *Visibility) UnmarshalJSON(data []byte) error {
	var in visibilityJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.State {
	case StateQuarantined:
		at := time.Time{}
		if in.UpdatedAt != nil {
			at = *in.UpdatedAt
		}
		*v = Quarantined(in.Reason, at)
	case StateVisible, "":
		*v = Visible()
	default:
		return fmt.Errorf("unknown visibility state %q", in.State)
	}
	return nil
}
