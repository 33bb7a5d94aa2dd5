package ffmpeg

import "regexp"

// Pre-compiled regexes for classifying ffmpeg stderr from a failed trim.
// Checked in order by [Classify]; the first match wins.
var (
	reInvalidInput = regexp.MustCompile(
		`(?i)No such file or directory|Invalid data found when processing input|` +
			`moov atom not found|Permission denied`)

	reStreamSpecifier = regexp.MustCompile(
		`(?i)Stream map '.*' matches no streams|` +
			`Output with label '.*' does not exist|` +
			`Invalid stream specifier`)

	reFilterGraph = regexp.MustCompile(
		`(?i)Error (initializing|configuring) (complex )?filters?|` +
			`Filtergraph .* was specified through the -vf/-af/-filter option|` +
			`Simple and complex filtering cannot be used together|` +
			`No such filter`)

	reEncoderSetup = regexp.MustCompile(
		`(?i)Error while opening encoder|Unknown encoder|` +
			`Could not write header for output file`)
)

// MatchInvalidInput reports whether stderr shows an unreadable input.
func MatchInvalidInput(stderr string) bool {
	return reInvalidInput.MatchString(stderr)
}

// MatchStreamSpecifier reports whether a -map target did not exist.
func MatchStreamSpecifier(stderr string) bool {
	return reStreamSpecifier.MatchString(stderr)
}

// MatchFilterGraph reports whether the audio filter graph was rejected.
func MatchFilterGraph(stderr string) bool {
	return reFilterGraph.MatchString(stderr)
}

// MatchEncoderSetup reports whether ffmpeg could not open the output encoder.
func MatchEncoderSetup(stderr string) bool {
	return reEncoderSetup.MatchString(stderr)
}

// Classify returns a short human hint for a failed run's stderr, or "".
func Classify(stderr string) string {
	switch {
	case MatchInvalidInput(stderr):
		return "input could not be read"
	case MatchStreamSpecifier(stderr):
		return "a mapped stream does not exist; check --weights against the input's audio tracks"
	case MatchFilterGraph(stderr):
		return "audio filter graph rejected"
	case MatchEncoderSetup(stderr):
		return "encoder could not be opened for the output"
	}
	return ""
}
