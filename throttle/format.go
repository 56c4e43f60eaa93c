package throttle

import (
	"math"
	"strconv"
	"time"
)

func formatInt(v int) string { return strconv.Itoa(v) }

// formatRetryAfter arredonda para cima: voltar antes do slot não adianta.
func formatRetryAfter(d time.Duration) string {
	return formatInt(max(int(math.Ceil(d.Seconds())), 1))
}

func formatDuration(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', -1, 64) + "ms"
}
