package download

import (
	"context"
	"fmt"

	"neurobik/pkg/selector"
)

const startBanner = `
+-----------------------------------------------------------------------------+
|                           Downloads Starting...                             |
+-----------------------------------------------------------------------------+
`

func (b bannerSelector) Select(ctx context.Context, items []selector.Item) ([]selector.Item, error) {
	selected, err := b.inner.Select(ctx, items)
	if err == nil && len(selected) > 0 {
		fmt.Fprint(b.out, startBanner)
	}
	return selected, err
}
