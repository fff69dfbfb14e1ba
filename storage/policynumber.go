// ABOUTME: Policy number generation for new policies
// ABOUTME: Combines the millisecond clock with random base-36 characters
package storage

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GeneratePolicyNumber returns "POL", the last six digits of the millisecond clock and
// four random base-36 characters, e.g. POL123456ABCD.
func GeneratePolicyNumber(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	} else {
		ms = strings.Repeat("0", 6-len(ms)) + ms
	}

	var b strings.Builder
	b.WriteString("POL")
	b.WriteString(ms)
	for range 4 {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return b.String()
}
