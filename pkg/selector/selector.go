package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"neurobik/pkg/config"
)

// Item is one entry offered for selection.
type Item struct {
	Name string
	Kind config.Kind
}

func (i Item) String() string {
	return fmt.Sprintf("%s: %s", i.Kind, i.Name)
}

// Selector returns the chosen subset of items. The order of the result is
// the processing order.
type Selector interface {
	Select(ctx context.Context, items []Item) ([]Item, error)
}

// Fuzzy lets the user mark items with TAB in a fuzzy finder.
type Fuzzy struct {
	Prompt string
}

func (f Fuzzy) Select(ctx context.Context, items []Item) ([]Item, error) {
	prompt := f.Prompt
	if prompt == "" {
		prompt = "Select items to download (TAB to mark) > "
	}
	idxs, err := fuzzyfinder.FindMulti(
		items,
		func(i int) string { return items[i].String() },
		fuzzyfinder.WithContext(ctx),
		fuzzyfinder.WithPromptString(prompt),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, fmt.Errorf("fuzzy finder failed: %w", err)
	}
	out := make([]Item, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, items[i])
	}
	return out, nil
}

// Static selects without prompting: every offered item when All is set,
// otherwise the offered items named in Names, in the order of Names.
type Static struct {
	All   bool
	Names []string
}

func (s Static) Select(ctx context.Context, items []Item) ([]Item, error) {
	if s.All {
		return append([]Item(nil), items...), nil
	}
	var out []Item
	for _, name := range s.Names {
		name = strings.TrimSpace(name)
		found := false
		for _, it := range items {
			if it.Name == name {
				out = append(out, it)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%q is not among the items offered for download", name)
		}
	}
	return out, nil
}
