package kpimaster

import "strings"

// baseID strips the owning template's prefix from an item id. Only an
// exact leading "templateID_" match is removed; ids that merely contain
// the template id elsewhere pass through unchanged.
func baseID(itemID, templateID string) string {
	prefix := templateID + "_"
	if strings.HasPrefix(itemID, prefix) {
		return itemID[len(prefix):]
	}
	return itemID
}

// scopedID builds the deterministic public id of a definition
// instantiated for a scope.
func scopedID(scopeID, base string) string {
	return scopeID + "_" + base
}

// templateItemID builds the id of a template item from its base id.
func templateItemID(templateID, base string) string {
	return templateID + "_" + base
}
