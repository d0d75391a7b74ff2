package domain

// Outcome is the per-channel result of one dispatch attempt. The boolean
// contract never raises across the channel boundary; Reason keeps the failure
// cause from being lost to the log stream.
type Outcome struct {
	OK     bool
	Reason string
}

// Failure reasons recorded when a channel cannot even be attempted. Distinct
// from transport failures so operators can tell a missing identity apart from
// a delivery error.
const (
	ReasonNoEmailOnFile  = "no email on file"
	ReasonNoChatIdentity = "no chat identity on file"
)

// DispatchResult maps every requested channel to its outcome. A channel absent
// from the recipient's configuration is recorded as a failed outcome, never
// silently omitted.
type DispatchResult struct {
	Outcomes map[Channel]Outcome
}

func NewDispatchResult() DispatchResult {
	return DispatchResult{Outcomes: make(map[Channel]Outcome)}
}

func (r *DispatchResult) Record(ch Channel, ok bool, reason string) {
	if r.Outcomes == nil {
		r.Outcomes = make(map[Channel]Outcome)
	}
	r.Outcomes[ch] = Outcome{OK: ok, Reason: reason}
}

// OK reports whether the given channel was attempted and succeeded.
func (r DispatchResult) OK(ch Channel) bool {
	return r.Outcomes[ch].OK
}

// AllFailed reports whether no requested channel succeeded.
func (r DispatchResult) AllFailed() bool {
	for _, outcome := range r.Outcomes {
		if outcome.OK {
			return false
		}
	}
	return true
}
