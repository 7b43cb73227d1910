package icons

import (
	"embed"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

//go:embed svg/*.svg
var svgFS embed.FS

// Name identifies an embedded icon.
type Name string

const (
	PullRequest  Name = "pull-request"
	Issue        Name = "issue"
	CodeReview   Name = "code-review"
	Filter       Name = "filter"
	CircleSlash  Name = "circle-slash"
	ChevronLeft  Name = "chevron-left"
	ChevronRight Name = "chevron-right"
	GitHub       Name = "github"
)

// GitHubGreen is the default colour of item glyphs.
const GitHubGreen = "#08872B"

const dataURIPrefix = "data:image/svg+xml,"

type template struct {
	svg            string
	defaultViewBox string
	defaultColor   string
	marker         string // start of the first path, used by Identify
}

var (
	fillAttr    = regexp.MustCompile(`fill="[^"]*"`)
	viewBoxAttr = regexp.MustCompile(`viewBox="[^"]*"`)
	pathData    = regexp.MustCompile(`\sd="([^"]{1,32})`)

	templates = map[Name]template{}
)

func init() {
	defs := []struct {
		name    Name
		viewBox string
		color   string
	}{
		{PullRequest, "0 0 24 24", GitHubGreen},
		{Issue, "0 0 24 24", GitHubGreen},
		{CodeReview, "0 0 24 24", GitHubGreen},
		{Filter, "0 0 24 24", "white"},
		{CircleSlash, "0 0 24 24", "white"},
		{ChevronLeft, "0 0 24 24", "white"},
		{ChevronRight, "0 0 24 24", "white"},
		{GitHub, "0 0 98 96", "white"},
	}
	for _, d := range defs {
		raw, err := svgFS.ReadFile("svg/" + string(d.name) + ".svg")
		if err != nil {
			panic(fmt.Sprintf("icons: missing embedded %s.svg: %v", d.name, err))
		}
		svg := string(raw)
		marker := ""
		if m := pathData.FindStringSubmatch(svg); m != nil {
			marker = m[1]
		}
		templates[d.name] = template{
			svg:            svg,
			defaultViewBox: d.viewBox,
			defaultColor:   d.color,
			marker:         marker,
		}
	}
}

// Options adjust how an icon is drawn. Zero values keep the icon's defaults.
type Options struct {
	Color   string
	ViewBox string // overrides Border and offsets when set
	Border  float64
	XOffset float64
	YOffset float64
}

// Render returns the icon as a data URI suitable for a key image.
func Render(name Name, opts Options) string {
	tpl, ok := templates[name]
	if !ok {
		return ""
	}
	color := opts.Color
	if color == "" {
		color = tpl.defaultColor
	}
	viewBox := opts.ViewBox
	if viewBox == "" {
		viewBox = ViewBox(tpl.defaultViewBox, opts.Border, opts.XOffset, opts.YOffset)
	}

	svg := replaceFirst(fillAttr, tpl.svg, `fill="`+color+`"`)
	svg = replaceFirst(viewBoxAttr, svg, `viewBox="`+viewBox+`"`)
	return dataURIPrefix + EncodeURIComponent(svg)
}

// ViewBox grows def by border on every side and then shifts the origin by the
// offsets: x -= border + xOffset, y -= border + yOffset, w += 2*border,
// h += 2*border. A malformed def is returned unchanged.
func ViewBox(def string, border, xOffset, yOffset float64) string {
	fields := strings.Fields(def)
	if len(fields) != 4 {
		return def
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return def
		}
		v[i] = n
	}

	v[0] -= border + xOffset
	v[1] -= border + yOffset
	v[2] += 2 * border
	v[3] += 2 * border

	out := make([]string, 4)
	for i, n := range v {
		out[i] = strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strings.Join(out, " ")
}

// Identify recovers the icon and colour from a data URI produced by Render.
func Identify(dataURI string) (Name, string, bool) {
	encoded, ok := strings.CutPrefix(dataURI, dataURIPrefix)
	if !ok {
		return "", "", false
	}
	svg, err := url.PathUnescape(encoded)
	if err != nil {
		return "", "", false
	}
	color := ""
	if m := fillAttr.FindString(svg); m != "" {
		color = strings.TrimSuffix(strings.TrimPrefix(m, `fill="`), `"`)
	}
	for name, tpl := range templates {
		if tpl.marker != "" && strings.Contains(svg, tpl.marker) {
			return name, color, true
		}
	}
	return "", color, false
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}
