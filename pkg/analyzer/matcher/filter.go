package matcher

// filter moves matched pairs that turned out textually identical within the
// same namespace to unchanged.
func (r *run) filter() {
	for _, p := range r.mp.MatchedEntities() {
		if p.Before.Text() == p.After.Text() && p.Before.Namespace() == p.After.Namespace() {
			r.mp.unchange(p.Before, p.After)
		}
	}
}
