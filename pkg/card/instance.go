package card

// Handle identifies a card instance within one session's pile set.
type Handle int

// Context carries per-instance data attached when the instance is created.
type Context struct {
	Threshold           int               `json:"threshold,omitempty"`
	RequestID           string            `json:"request_id,omitempty"`
	SuccessRateOverride int               `json:"success_rate_override,omitempty"`
	Exchange            map[string]string `json:"exchange,omitempty"`
}

// Instance is one copy of a Definition owned by exactly one pile.
type Instance struct {
	Handle   Handle      `json:"handle"`
	Def      *Definition `json:"card"`
	Playable bool        `json:"playable"`
	XP       int         `json:"xp,omitempty"`
	Context  Context     `json:"context,omitempty"`
}

// Threshold is the momentum needed before the instance can leave the
// Request pile. The context value wins over the definition.
func (i *Instance) Threshold() int {
	if i.Context.Threshold > 0 {
		return i.Context.Threshold
	}
	return i.Def.Threshold
}

// FixedRate returns a success rate that bypasses doubt and modifiers, if the
// instance has one.
func (i *Instance) FixedRate() (int, bool) {
	if i.Context.SuccessRateOverride > 0 {
		return i.Context.SuccessRateOverride, true
	}
	return 0, false
}

func (i *Instance) String() string {
	if i == nil || i.Def == nil {
		return "<nil card>"
	}
	return i.Def.Name
}
