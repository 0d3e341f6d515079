package handlers

import "strconv"

func atoiDefault(s string, def int) (int, bool) {
	if s == "" {
		return def, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def, false
	}
	return n, true
}
