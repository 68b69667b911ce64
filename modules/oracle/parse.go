package oracle

import (
	"strconv"
	"strings"
)

func parseInt(out []byte) (int64, bool) {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseWidths reads a bracketed list such as "[12, 22, 17]".
func parseWidths(out []byte) ([]int, bool) {
	s := strings.TrimSpace(string(out))
	s, ok := strings.CutPrefix(s, "[")
	if !ok {
		return nil, false
	}
	s, ok = strings.CutSuffix(s, "]")
	if !ok {
		return nil, false
	}
	if strings.TrimSpace(s) == "" {
		return []int{}, true
	}

	fields := strings.Split(s, ",")
	widths := make([]int, 0, len(fields))
	for _, f := range fields {
		w, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, false
		}
		widths = append(widths, w)
	}
	return widths, true
}
