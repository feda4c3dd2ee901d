package manifest

// Merge policy names accepted by [dispatcher].merge_policy.
const (
	MergeFirst     = "first"
	MergeLast      = "last"
	MergeAggregate = "aggregate"
)
