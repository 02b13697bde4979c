package katex

// supportedEnvironments is the reference set of structural TeX
// environments the engine typesets. Exposed so clients can
// feature-detect before submitting markup.
var supportedEnvironments = []string{
	"matrix",
	"pmatrix",
	"vmatrix",
	"Bmatrix",
	"aligned",
	"gathered",
	"smallmatrix",
	"array",
	"bmatrix",
	"Vmatrix",
	"alignedat",
	"cases",
	"rcases",
	"darray",
	"dcases",
	"drcases",
}

// SupportedEnvironments returns a copy of the supported structural
// environment names.
func SupportedEnvironments() []string {
	out := make([]string, len(supportedEnvironments))
	copy(out, supportedEnvironments)
	return out
}

// IsSupportedEnvironment reports whether name is in the reference set.
func IsSupportedEnvironment(name string) bool {
	for _, env := range supportedEnvironments {
		if env == name {
			return true
		}
	}
	return false
}
