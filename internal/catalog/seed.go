package catalog

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed seed.json
var seedContent []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in content catalog. The seed content goes
// through the same schema and structural validation as external packs, so
// a malformed seed fails loudly at first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(seedContent)
		if err != nil {
			panic(fmt.Sprintf("catalog: invalid seed content: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
