package plan

import "context"

type inMemSource struct {
	plans []Plan
}

// NewInMemSource returns a Source over a literal plan list.
// Panics when no plans are given so the service never starts with an empty
// catalog. Plans are deep-copied to keep the source immutable.
func NewInMemSource(plans ...Plan) Source {
	if len(plans) == 0 {
		panic("plan: at least one plan is required")
	}
	cp := make([]Plan, len(plans))
	for i, p := range plans {
		cp[i] = p.Clone()
	}
	return &inMemSource{plans: cp}
}

func (s *inMemSource) Load(ctx context.Context) ([]Plan, error) {
	out := make([]Plan, len(s.plans))
	for i, p := range s.plans {
		out[i] = p.Clone()
	}
	return out, nil
}
