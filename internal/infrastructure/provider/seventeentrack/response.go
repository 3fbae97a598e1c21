package seventeentrack

import "strings"

// responseItems finds the list of per-number items in a provider response:
// a bare list, data[], data.accepted[] or result[].
func responseItems(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		return objects(t)
	case map[string]any:
		for _, key := range []string{"data", "result"} {
			switch d := t[key].(type) {
			case []any:
				return objects(d)
			case map[string]any:
				if acc, ok := d["accepted"].([]any); ok {
					return objects(acc)
				}
			}
		}
	}
	return nil
}

func rejectedItems(v any) []map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	d, ok := m["data"].(map[string]any)
	if !ok {
		return nil
	}
	rej, _ := d["rejected"].([]any)
	return objects(rej)
}

func objects(list []any) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func itemNumber(item map[string]any) string {
	for _, key := range []string{"number", "no"} {
		if s, ok := item[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func rejectionReason(item map[string]any) string {
	if e, ok := item["error"].(map[string]any); ok {
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	}
	if msg, ok := item["message"].(string); ok {
		return msg
	}
	return "rejected"
}
