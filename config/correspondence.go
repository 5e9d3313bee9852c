package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/otmatch/cost"
)

// Correspondence is a cost.Correspondence that can be decoded from YAML and
// from an environment variable while keeping declaration order.
type Correspondence []cost.Pair

// UnmarshalYAML accepts an ordered mapping or a sequence of pairs.
func (c *Correspondence) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.MappingNode:
		out := make(Correspondence, 0, len(n.Content)/2)
		for k := 0; k+1 < len(n.Content); k += 2 {
			key, val := n.Content[k], n.Content[k+1]
			if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: correspondence entries must be scalar", key.Line)
			}
			out = append(out, cost.Pair{Source: key.Value, Target: val.Value})
		}
		*c = out
	case yaml.SequenceNode:
		var pairs []cost.Pair
		if err := n.Decode(&pairs); err != nil {
			return err
		}
		*c = pairs
	default:
		return fmt.Errorf("line %d: correspondence must be a mapping or a list", n.Line)
	}

	return nil
}

// Decode implements envconfig.Decoder for "src:tgt,src:tgt".
func (c *Correspondence) Decode(value string) error {
	var out Correspondence
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		src, tgt, ok := strings.Cut(item, ":")
		if !ok {
			return fmt.Errorf("correspondence item %q: want source:target", item)
		}
		out = append(out, cost.Pair{Source: strings.TrimSpace(src), Target: strings.TrimSpace(tgt)})
	}
	*c = out

	return nil
}

// Cost converts c to the cost package type.
func (c Correspondence) Cost() cost.Correspondence {
	return cost.Correspondence(append([]cost.Pair(nil), c...))
}
