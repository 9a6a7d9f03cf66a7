package output

// ANSI SGR sequences.
const (
	reset     = "\x1b[0m"
	sgrBold   = "\x1b[1m"
	sgrDim    = "\x1b[2m"
	sgrGreen  = "\x1b[32m"
	sgrYellow = "\x1b[33m"
	sgrCyan   = "\x1b[36m"
	sgrBlue   = "\x1b[1;94m"
	sgrBGreen = "\x1b[1;92m"
	sgrWhite  = "\x1b[97m"
)

type palette struct {
	enabled bool
}

func newPalette(enabled bool) palette { return palette{enabled: enabled} }

func (p palette) wrap(code, s string) string {
	if !p.enabled {
		return s
	}
	return code + s + reset
}

func (p palette) bold(s string) string    { return p.wrap(sgrBold, s) }
func (p palette) dim(s string) string     { return p.wrap(sgrDim, s) }
func (p palette) green(s string) string   { return p.wrap(sgrGreen, s) }
func (p palette) yellow(s string) string  { return p.wrap(sgrYellow, s) }
func (p palette) cyan(s string) string    { return p.wrap(sgrCyan, s) }
func (p palette) bright(s string) string  { return p.wrap(sgrWhite, s) }
func (p palette) heading(s string) string { return p.wrap(sgrBold+sgrYellow, s) }

// Banner colours differ per section.
func (p palette) blue(s string) string { return p.wrap(sgrBlue, s) }

func (p palette) greenBanner(s string) string { return p.wrap(sgrBGreen, s) }
