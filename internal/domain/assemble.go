package domain

// Assemble returns a copy of tree where every top item titled SentinelTitle
// carries distributed as its branch. Other items are copied as-is, keeping
// their branch pointers. The input tree is not modified.
func Assemble(tree NavTree, distributed MenuBranch) NavTree {
	out := make(NavTree, len(tree))
	for i, item := range tree {
		if item.Title == SentinelTitle {
			branch := distributed
			if branch.Columns == nil {
				branch.Columns = []MenuColumn{}
			}
			item.Branch = &branch
		}
		out[i] = item
	}
	return out
}

// Build runs the whole assembly for one pair of source snapshots.
// It is cheap and is meant to be called on every read.
func Build(records []NavRecord, sites []SiteEntry) NavTree {
	return Assemble(Link(records), Distribute(sites))
}

// CountLinks returns the number of leaf links across all branches.
func (t NavTree) CountLinks() int {
	n := 0
	for _, item := range t {
		if item.Branch == nil {
			continue
		}
		for _, col := range item.Branch.Columns {
			n += len(col.Items)
		}
	}
	return n
}
