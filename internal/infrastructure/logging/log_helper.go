package logging

import "sort"

const (
	categoryKey    ExtraKey = "Category"
	subCategoryKey ExtraKey = "SubCategory"
)

// logParamsToZapParams flattens extra into sorted key/value pairs so that
// console output keeps a stable field order.
func logParamsToZapParams(extra map[ExtraKey]any) []any {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	params := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		params = append(params, k, extra[ExtraKey(k)])
	}
	return params
}

func logParamsToZeroParams(extra map[ExtraKey]any) map[string]any {
	params := make(map[string]any, len(extra))
	for k, v := range extra {
		params[string(k)] = v
	}
	return params
}

// prepareLogInfo copies extra so callers may reuse their maps across calls.
func prepareLogInfo(cat Category, sub SubCategory, extra map[ExtraKey]any) map[ExtraKey]any {
	out := make(map[ExtraKey]any, len(extra)+2)
	for k, v := range extra {
		out[k] = v
	}
	out[categoryKey] = cat
	out[subCategoryKey] = sub
	return out
}
