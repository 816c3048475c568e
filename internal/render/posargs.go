package render

import (
	"regexp"
	"runtime"
	"strconv"
)

var (
	posArgUnix    = regexp.MustCompile(`\$(\d+)`)
	posArgWindows = regexp.MustCompile(`%(\d+)`)
)

// renderArgs substitutes positional references ($0..$9 on unix-like
// platforms, %0..%9 on windows-like ones) in s with elements of args. An
// out-of-range position renders as empty string rather than erroring,
// matching the source's behavior.
func renderArgs(s string, args []string) string {
	re := posArgUnix
	if runtime.GOOS == "windows" {
		re = posArgWindows
	}
	return re.ReplaceAllStringFunc(s, func(m string) string {
		pos, err := strconv.Atoi(re.FindStringSubmatch(m)[1])
		if err != nil || pos < 0 || pos >= len(args) {
			return ""
		}
		return args[pos]
	})
}
