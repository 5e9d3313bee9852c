package match

import (
	"fmt"

	"github.com/katalvlaran/otmatch/dataset"
)

// idSep joins the A and B ids of an intermediate record.
const idSep = "\x1f"

// Intermediate is the A-B matched population fed to stage 2: one record per
// stage-1 link.
type Intermediate struct {
	view  dataset.View
	links []Link
	a, b  dataset.View
}

// NewIntermediate builds the intermediate records for links between a and b.
// Each record carries the link weight as its mass and a's values for vars,
// gathered at the link's source position.
//
// Errors: dataset.ErrSchemaMismatch when a lacks one of vars.
func NewIntermediate(a, b dataset.View, links []Link, vars []string) (*Intermediate, error) {
	ids := make([]string, len(links))
	weights := make([]float64, len(links))
	for k, l := range links {
		ids[k] = a.ID(l.Src) + idSep + b.ID(l.Tgt)
		weights[k] = l.Weight
	}
	name := a.Name() + "_" + b.Name()
	ds, err := dataset.New(name, ids, weights)
	if err != nil {
		return nil, fmt.Errorf("intermediate %q: %w", name, err)
	}
	for _, v := range vars {
		src, err := a.Values(v)
		if err != nil {
			return nil, err
		}
		col := make([]float64, len(links))
		for k, l := range links {
			col[k] = src[l.Src]
		}
		if err = ds.AddVariable(v, col); err != nil {
			return nil, err
		}
	}

	return &Intermediate{view: ds.All(), links: links, a: a, b: b}, nil
}

// View returns the intermediate records as a dataset view.
func (im *Intermediate) View() dataset.View { return im.view }

// Len returns the number of intermediate records.
func (im *Intermediate) Len() int { return len(im.links) }

// Mass returns the total intermediate weight.
func (im *Intermediate) Mass() float64 { return im.view.Mass() }

// Pair returns the A and B ids behind intermediate record k.
func (im *Intermediate) Pair(k int) (string, string) {
	l := im.links[k]

	return im.a.ID(l.Src), im.b.ID(l.Tgt)
}
