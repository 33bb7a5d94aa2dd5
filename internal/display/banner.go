package display

import (
	"fmt"
	"io"

	"github.com/backmassage/fftrim/internal/config"
	"github.com/backmassage/fftrim/internal/term"
)

// PrintBanner prints the ASCII art banner and version; uses Magenta if
// colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, `  __  __ _        _
 / _|/ _| |_ _ __(_)_ __ ___
| |_| |_| __| '__| | '_ `+"`"+` _ \
|  _|  _| |_| |  | | | | | | |
|_| |_|  \__|_|  |_|_| |_| |_|
`)
	fmt.Fprint(w, term.NC)
	fmt.Fprintf(w, "v%s\n\n", config.Version)
}
