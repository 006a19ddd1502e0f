package domain

// Tag is a keyword attached to resources. UsageCount is the number of
// resources referencing it; tags at zero are removed by the backend.
type Tag struct {
	Name       string `json:"name"`
	UsageCount int    `json:"usageCount"`
}

// TagNames returns the names of tags in order.
func TagNames(tags []Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}
