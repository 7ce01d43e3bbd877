package utils

import "strconv"

func Imin(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func Imax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// NDigits returns the printed width of n, used to size report columns
func NDigits(n int) int {
	return len(strconv.Itoa(n))
}
