package classify

import "github.com/tinyland-inc/slacksweep/pkg/event"

// Threshold is the fixed score above which a media item counts as explicit.
const Threshold = 0.35

// Decision is the aggregate verdict for one message.
type Decision struct {
	Identity    event.MessageIdentity
	Flagged     bool
	FlaggedRefs []string
}

// Decide applies the threshold with OR-aggregation: a single flagged item
// flags the whole message. Failed results contribute nothing.
func Decide(identity event.MessageIdentity, results []Result) Decision {
	d := Decision{Identity: identity}
	for _, r := range results {
		if r.Status != StatusSuccess {
			continue
		}
		if r.Score >= Threshold {
			d.Flagged = true
			d.FlaggedRefs = append(d.FlaggedRefs, r.ReferenceID)
		}
	}
	return d
}
