package label

// Cull removes labels that overlap a label of a larger feature. Each label
// is compared against the labels still alive; the first loss drops it.
// Equal areas go to the lower feature index, then to the earlier label.
// The survivors keep their input order.
func Cull(labels []Label) []Label {
	alive := make([]bool, len(labels))
	for i := range alive {
		alive[i] = true
	}

	for i := range labels {
		if !alive[i] {
			continue
		}
		for j := range labels {
			if j == i || !alive[j] {
				continue
			}
			if !labels[i].Rect.Overlaps(labels[j].Rect) {
				continue
			}
			if beats(labels, i, j) {
				alive[j] = false
			} else {
				alive[i] = false
				break
			}
		}
	}

	out := make([]Label, 0, len(labels))
	for i, l := range labels {
		if alive[i] {
			out = append(out, l)
		}
	}
	return out
}

func beats(labels []Label, i, j int) bool {
	a, b := labels[i], labels[j]
	switch {
	case a.Area != b.Area:
		return a.Area > b.Area
	case a.Feature != b.Feature:
		return a.Feature < b.Feature
	default:
		return i < j
	}
}
