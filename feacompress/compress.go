package feacompress

import (
	"github.com/npillmayer/featools/fea"
)

// Compress runs lookup promotion and class extraction on a table, in this
// order. The table is modified in place.
func Compress(t *fea.Table) error {
	if t == nil {
		return nil
	}
	tracer().Debugf("compressing %s table with %d features", t.Tag, len(t.Features))
	if err := PromoteLookups(t); err != nil {
		return err
	}
	if err := ExtractClasses(t); err != nil {
		return err
	}
	tracer().Infof("%s: %d global lookups, %d global classes", t.Tag, len(t.Lookups), t.Classes.Len())
	return nil
}
