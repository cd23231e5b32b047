// Package atmosphere models the single temporary modifier that colors a
// conversation. A session holds at most one atmosphere at a time.
package atmosphere

import "fmt"

type Type string

const (
	Neutral      Type = "neutral"
	Prepared     Type = "prepared"
	Receptive    Type = "receptive"
	Pressured    Type = "pressured"
	Focused      Type = "focused"
	Patient      Type = "patient"
	Volatile     Type = "volatile"
	Exposed      Type = "exposed"
	Synchronized Type = "synchronized"
	Informed     Type = "informed"
	Final        Type = "final"
)

// All lists every atmosphere, Neutral first.
var All = []Type{Neutral, Prepared, Receptive, Pressured, Focused, Patient, Volatile, Exposed, Synchronized, Informed, Final}

// Parse validates an atmosphere name. The empty string parses as Neutral.
func Parse(name string) (Type, error) {
	if name == "" {
		return Neutral, nil
	}
	for _, t := range All {
		if string(t) == name {
			return t, nil
		}
	}
	return Neutral, fmt.Errorf("unknown atmosphere %q", name)
}

// FromMagnitude picks the atmosphere an Atmospheric success sets for a card
// of the given magnitude.
func FromMagnitude(magnitude int) Type {
	switch {
	case magnitude <= 1:
		return Patient
	case magnitude == 2:
		return Receptive
	case magnitude == 3:
		return Focused
	default:
		return Synchronized
	}
}

// FocusBonus is added to focus capacity.
func (t Type) FocusBonus() int {
	if t == Prepared {
		return 1
	}
	return 0
}

// DrawModifier adjusts the LISTEN draw count.
func (t Type) DrawModifier() int {
	switch t {
	case Receptive:
		return 1
	case Pressured:
		return -1
	default:
		return 0
	}
}

// SuccessBonus is a flat percentage added to every success rate.
func (t Type) SuccessBonus() int {
	if t == Focused {
		return 20
	}
	return 0
}

// MagnitudeBonus is added to effect magnitude before multipliers.
func (t Type) MagnitudeBonus() int {
	if t == Focused {
		return 1
	}
	return 0
}

// MagnitudeMultiplier scales effect magnitude.
func (t Type) MagnitudeMultiplier() int {
	if t == Exposed {
		return 2
	}
	return 1
}

func (t Type) WaivesFocusCost() bool { return t == Patient }
func (t Type) AutoSucceeds() bool { return t == Informed }
func (t Type) EndsOnFailure() bool { return t == Final }
func (t Type) DoublesNextEffect() bool { return t == Synchronized }
func (t Type) IsVolatile() bool { return t == Volatile }

// OneShot reports whether the atmosphere is consumed by the next SPEAK.
func (t Type) OneShot() bool {
	switch t {
	case Patient, Informed, Synchronized:
		return true
	default:
		return false
	}
}

// ModifyFlow applies the atmosphere's flow rule to a raw delta.
func (t Type) ModifyFlow(delta int) int {
	switch t {
	case Volatile:
		return AwayFromZero(delta, 1)
	case Exposed, Synchronized:
		return delta * 2
	default:
		return delta
	}
}

// AwayFromZero moves a non-zero value n steps further from zero.
// Zero stays zero.
func AwayFromZero(v, n int) int {
	switch {
	case v > 0:
		return v + n
	case v < 0:
		return v - n
	default:
		return 0
	}
}

// Modifier holds the active atmosphere for one session.
type Modifier struct {
	current Type
}

// Current returns the active atmosphere, Neutral when none is set.
func (m *Modifier) Current() Type {
	if m.current == "" {
		return Neutral
	}
	return m.current
}

// Set replaces the active atmosphere.
func (m *Modifier) Set(t Type) {
	m.current = t
}

// Clear resets the atmosphere to Neutral.
func (m *Modifier) Clear() {
	m.current = Neutral
}

// ConsumeOneShot clears a one-shot atmosphere and reports whether one was
// consumed.
func (m *Modifier) ConsumeOneShot() bool {
	if m.Current().OneShot() {
		m.Clear()
		return true
	}
	return false
}
