// Data types for items and attributes.

package models

// Attribute is a single name/value pair on an item. Values are plain
// strings end to end; the store never coerces types.
type Attribute struct {
	Name  string
	Value string
}

// Item is one row of a select result: the item key (empty when the query
// did not project the key column) plus its attributes in column order.
type Item struct {
	Name       string
	Attributes []Attribute
}

// ReplaceableItem is one entry of a BatchPutAttributes request.
type ReplaceableItem struct {
	Name       string
	Attributes map[string]string
}
