package domain

// ItemOutcome is the terminal result of driving one media item through
// the download pipeline.
type ItemOutcome struct {
	MediaID     string
	Index       int
	Path        string // relative to the media root, empty on failure
	Fingerprint string
	ByteSize    int64
	Skipped     bool // already on disk with a matching fingerprint record
	Err         error
}

// Failed reports whether the item reached a terminal failure.
func (o ItemOutcome) Failed() bool {
	return o.Err != nil
}

// PostOutcome aggregates the item outcomes of one post, ordered by index.
type PostOutcome struct {
	Items     []ItemOutcome
	Attempted int
	Fetched   int
	Skipped   int
	Failed    int
}

// Paths returns the relative paths of all items currently on disk for the
// post, in carousel order. Failed items are left out.
func (o PostOutcome) Paths() []string {
	paths := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if item.Failed() {
			continue
		}
		paths = append(paths, item.Path)
	}
	return paths
}

// RunSummary totals one sync run across all posts.
type RunSummary struct {
	Posts   int
	Pages   int
	Fetched int
	Skipped int
	Failed  int
}
