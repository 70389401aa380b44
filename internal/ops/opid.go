package ops

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// OpIDPattern matches a full operation id, OP-YYYY-NNNN.
var OpIDPattern = regexp.MustCompile(`^OP-\d{4}-\d{4}$`)

var opIDScan = regexp.MustCompile(`OP-\d{4}-\d{4}`)

// ExtractOpID returns the first operation id found in free text,
// case-insensitively, or "" when none is present.
func ExtractOpID(text string) string {
	return opIDScan.FindString(strings.ToUpper(text))
}

// NextOpID computes the id following last for the given year. last is the
// highest existing id under that year's prefix, or "" when the year has none.
// A suffix that does not parse counts as zero.
func NextOpID(last string, year int) string {
	prefix := fmt.Sprintf("OP-%04d-", year)
	if last == "" {
		return prefix + "0001"
	}
	parts := strings.Split(last, "-")
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		n = 0
	}
	return fmt.Sprintf("%s%04d", prefix, n+1)
}
