package terminal

import (
	_ "embed"

	"github.com/leonelquinteros/gotext"
)

//go:embed locales/en.po
var defaultCatalog []byte

// NewCatalog parses a gettext catalogue. A nil or empty source loads the
// built-in English labels.
func NewCatalog(source []byte) *gotext.Po {
	if len(source) == 0 {
		source = defaultCatalog
	}
	po := gotext.NewPo()
	po.Parse(source)
	return po
}
