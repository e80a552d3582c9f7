package domain

// Link rebuilds the navigation tree from flat records in three passes:
// top items, then columns, then leaves.
//
// Parents are matched by exact title equality and the first match wins.
// Columns and leaves whose parent cannot be found are dropped. Link never
// fails; a nil input yields an empty tree.
func Link(records []NavRecord) NavTree {
	tree := make(NavTree, 0, countLevel(records, LevelTop))

	// Pass 1: top items, in encounter order
	for _, rec := range records {
		if rec.Level != LevelTop {
			continue
		}
		item := NavTopItem{
			Title: rec.Title,
			Href:  rec.URL.Resolve(),
		}
		if rec.Expandable {
			item.Branch = newBranch()
		}
		tree = append(tree, item)
	}

	// Pass 2: columns under the first top item with the parent's title
	for _, rec := range records {
		if rec.Level != LevelColumn || rec.ParentTitle == "" {
			continue
		}
		top := findTop(tree, rec.ParentTitle)
		if top == nil || top.Branch == nil {
			continue
		}
		top.Branch.Columns = append(top.Branch.Columns, newColumn(rec.Title))
	}

	// Pass 3: leaves under the first matching column across the whole tree
	for _, rec := range records {
		if rec.Level != LevelLeaf || rec.ParentTitle == "" {
			continue
		}
		col := findColumn(tree, rec.ParentTitle)
		if col == nil {
			continue
		}
		col.Items = append(col.Items, LinkItem{
			Title: rec.Title,
			Href:  rec.URL.Resolve(),
		})
	}

	return tree
}

func findTop(tree NavTree, title string) *NavTopItem {
	for i := range tree {
		if tree[i].Title == title {
			return &tree[i]
		}
	}
	return nil
}

func findColumn(tree NavTree, title string) *MenuColumn {
	for i := range tree {
		branch := tree[i].Branch
		if branch == nil {
			continue
		}
		for j := range branch.Columns {
			if branch.Columns[j].Title == title {
				return &branch.Columns[j]
			}
		}
	}
	return nil
}

func countLevel(records []NavRecord, level LevelTag) int {
	n := 0
	for _, rec := range records {
		if rec.Level == level {
			n++
		}
	}
	return n
}
