// Flat indexed-parameter decoding. The wire format flattens attribute
// lists into `Attribute.<n>.Name` / `Attribute.<n>.Value` keys; the
// storage layer only ever sees clean maps and slices.

package server

import (
	"fmt"
	"net/url"

	"github.com/camvine/fakesdb/internal/models"
)

// requiredParam fetches a parameter or raises MissingParameter.
func requiredParam(form url.Values, name string) (string, error) {
	if !form.Has(name) {
		return "", models.MissingParameter(name)
	}
	return form.Get(name), nil
}

// decodeAttributes consumes `<prefix>Attribute.<n>.Name/Value` pairs by
// increasing n from 0 until the first gap. Later duplicates of a name win.
func decodeAttributes(form url.Values, prefix string) map[string]string {
	attrs := map[string]string{}
	for i := 0; ; i++ {
		nameKey := fmt.Sprintf("%sAttribute.%d.Name", prefix, i)
		if !form.Has(nameKey) {
			break
		}
		attrs[form.Get(nameKey)] = form.Get(fmt.Sprintf("%sAttribute.%d.Value", prefix, i))
	}
	return attrs
}

// decodeBatchItems consumes `Item.<n>.ItemName` plus the nested
// `Item.<n>.Attribute.<m>.*` keys, in increasing n until the first gap.
func decodeBatchItems(form url.Values) []models.ReplaceableItem {
	var items []models.ReplaceableItem
	for i := 0; ; i++ {
		nameKey := fmt.Sprintf("Item.%d.ItemName", i)
		if !form.Has(nameKey) {
			break
		}
		items = append(items, models.ReplaceableItem{
			Name:       form.Get(nameKey),
			Attributes: decodeAttributes(form, fmt.Sprintf("Item.%d.", i)),
		})
	}
	return items
}
