package table

// Folds assigns each training row to a cross-validation fold. A value of
// NoFold means the row carries no fold constraint.
type Folds []int

const NoFold = -1

// FoldsFromLabels maps arbitrary fold labels to integer fold ids in order of
// first appearance. An empty label means the row has no fold.
func FoldsFromLabels(labels []string) Folds {
	folds := make(Folds, len(labels))
	ids := make(map[string]int)
	for i, label := range labels {
		if label == "" {
			folds[i] = NoFold
			continue
		}
		id, ok := ids[label]
		if !ok {
			id = len(ids)
			ids[label] = id
		}
		folds[i] = id
	}
	return folds
}

// Same reports whether rows i and j share a defined fold.
func (f Folds) Same(i, j int) bool {
	if f == nil {
		return false
	}
	return f[i] != NoFold && f[i] == f[j]
}
