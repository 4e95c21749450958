package domain

// MergeResult is the outcome of applying a remote snapshot to the local collection.
type MergeResult struct {
	// Local is the new local collection.
	Local []Quote

	// LocalOnly holds local records with no counterpart in the remote snapshot.
	LocalOnly []Quote

	// NewFromRemote holds remote records that were appended.
	NewFromRemote []Quote
}

// IndexByID builds an id lookup. Later duplicates overwrite earlier ones.
func IndexByID(quotes []Quote) map[string]Quote {
	index := make(map[string]Quote, len(quotes))
	for _, q := range quotes {
		index[q.ID] = q
	}

	return index
}

// InConflict applies the conflict rule to a local/remote pair sharing an id.
// Equal timestamps are trusted as the same version even when content drifted.
func InConflict(local, remote Quote) bool {
	return remote.UpdatedAt != local.UpdatedAt && !remote.SameContent(local)
}

// DetectConflicts reports every local record whose remote counterpart conflicts with it.
// Conflicts are returned in local collection order.
func DetectConflicts(local, remote []Quote) []Conflict {
	byID := IndexByID(remote)

	var conflicts []Conflict

	for _, l := range local {
		r, ok := byID[l.ID]
		if !ok || !InConflict(l, r) {
			continue
		}

		conflicts = append(conflicts, Conflict{ID: l.ID, Local: l, Server: r})
	}

	return conflicts
}

// Merge applies the remote-wins policy. Conflicting records are replaced by the
// remote version, remote-only records are appended, and local-only records are
// kept and reported for pushing. The inputs are not modified.
func Merge(local, remote []Quote, conflicts []Conflict) MergeResult {
	replacements := make(map[string]Quote, len(conflicts))
	for _, c := range conflicts {
		replacements[c.ID] = c.Server
	}

	remoteByID := IndexByID(remote)
	localIDs := make(map[string]struct{}, len(local))

	result := MergeResult{
		Local: make([]Quote, 0, len(local)+len(remote)),
	}

	for _, l := range local {
		localIDs[l.ID] = struct{}{}

		if r, ok := replacements[l.ID]; ok {
			result.Local = append(result.Local, r)
			continue
		}

		result.Local = append(result.Local, l)
	}

	for _, r := range remoteOrder(remote, remoteByID) {
		if _, ok := localIDs[r.ID]; ok {
			continue
		}

		result.Local = append(result.Local, r)
		result.NewFromRemote = append(result.NewFromRemote, r)
	}

	result.LocalOnly = LocalOnly(result.Local, remoteByID)

	return result
}

// LocalOnly returns the records in quotes whose id is absent from remote.
func LocalOnly(quotes []Quote, remote map[string]Quote) []Quote {
	var out []Quote

	for _, q := range quotes {
		if _, ok := remote[q.ID]; !ok {
			out = append(out, q)
		}
	}

	return out
}

// remoteOrder returns one record per remote id, in first-seen order, holding
// the last value seen for that id.
func remoteOrder(remote []Quote, byID map[string]Quote) []Quote {
	seen := make(map[string]struct{}, len(byID))
	out := make([]Quote, 0, len(byID))

	for _, r := range remote {
		if _, ok := seen[r.ID]; ok {
			continue
		}

		seen[r.ID] = struct{}{}
		out = append(out, byID[r.ID])
	}

	return out
}
