package election

import "encoding/json"

// RegionTree aggregates votes across a hierarchy such as village → district
type RegionTree struct {
	Name       string        `json:"name"`
	Votes      int           `json:"votes"`
	SubRegions []*RegionTree `json:"subRegions"`
}

// CountVotesInRegions sums the votes of node and all of its descendants.
// A nil node counts as zero. The tree is assumed to be acyclic.
func CountVotesInRegions(node *RegionTree) int {
	if node == nil {
		return 0
	}
	total := node.Votes
	for _, child := range node.SubRegions {
		total += CountVotesInRegions(child)
	}
	return total
}

// UnmarshalJSON decodes a region leniently: a non-numeric "votes" becomes 0
// and a "subRegions" value that is not a list is ignored.
func (r *RegionTree) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not an object: treat as an empty region
		*r = RegionTree{}
		return nil
	}

	var node RegionTree
	if v, ok := raw["name"]; ok {
		_ = json.Unmarshal(v, &node.Name)
	}
	if v, ok := raw["votes"]; ok {
		var votes float64
		if err := json.Unmarshal(v, &votes); err == nil {
			node.Votes = int(votes)
		}
	}
	if v, ok := raw["subRegions"]; ok {
		var children []json.RawMessage
		if err := json.Unmarshal(v, &children); err == nil {
			for _, c := range children {
				if isJSONObject(c) {
					child := &RegionTree{}
					if err := child.UnmarshalJSON(c); err != nil {
						return err
					}
					node.SubRegions = append(node.SubRegions, child)
				}
			}
		}
	}

	*r = node
	return nil
}

func isJSONObject(data json.RawMessage) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
