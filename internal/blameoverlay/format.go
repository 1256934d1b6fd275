package blameoverlay

// ParseFormat inspects the arguments a caller is about to pass to `git
// blame` and determines which output mode they select, so the wrapper
// knows which Apply path to take without re-parsing Git's own flag syntax
// beyond the handful of tokens that change output shape.
func ParseFormat(args []string) Format {
	for _, a := range args {
		switch a {
		case "--line-porcelain":
			return FormatLinePorcelain
		case "--porcelain":
			return FormatPorcelain
		case "--incremental":
			return FormatIncremental
		}
	}
	return FormatDefault
}
