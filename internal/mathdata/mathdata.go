// Package mathdata turns a single-variable expression into plot-ready
// numeric data: a sampled curve, an optional derivative and integral,
// and annotations for roots, extrema and the y-intercept.
//
// The engine is purely numeric. Derivatives use central differences,
// integrals a cumulative trapezoid rule, and roots and critical points
// come from sign changes on the sample grid refined by bisection.
package mathdata

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"vizify/internal/mathexpr"
)

// ErrInvalidExpression marks expressions the parser rejects. The API
// layer maps it to a 400.
var ErrInvalidExpression = errors.New("mathdata: invalid expression")

const (
	numPoints = 500
	defaultLo = -10
	defaultHi = 10

	// Relative step for central differences. Small enough that the
	// bisection below locates extrema well past four decimals.
	derivStep = 1e-6
)

// Request selects what to compute for one expression. A nil XRange or
// YRange means [-10, 10]; a nil IncludeAnnotations means true.
type Request struct {
	Expression         string             `json:"expression"`
	XRange             *[2]float64        `json:"x_range"`
	YRange             *[2]float64        `json:"y_range"`
	IncludeDerivative  bool               `json:"include_derivative"`
	IncludeIntegral    bool               `json:"include_integral"`
	IncludeAnnotations *bool              `json:"include_annotations"`
	Parameters         map[string]float64 `json:"parameters"`
}

// Series holds matched x and y sample arrays.
type Series struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Curve is a sampled series together with the expression it came from.
type Curve struct {
	Points     Series `json:"points"`
	Expression string `json:"expression"`
}

// Annotation marks a notable point on the curve.
type Annotation struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
	Type  string  `json:"type"`
}

// Response is the wire shape the interactive plot consumes. Derivative,
// Integral and Annotations are null unless requested.
type Response struct {
	Function    Curve        `json:"function"`
	Derivative  *Curve       `json:"derivative"`
	Integral    *Curve       `json:"integral"`
	Annotations []Annotation `json:"annotations"`
	Parameters  []string     `json:"parameters"`
	XRange      [2]float64   `json:"x_range"`
	YRange      [2]float64   `json:"y_range"`
}

// Generate evaluates the request. Unbound parameter names are returned
// in Parameters with an empty curve so the frontend can render sliders
// and ask again with values filled in.
func Generate(req Request) (Response, error) {
	exprSrc := strings.TrimSpace(req.Expression)
	if exprSrc == "" {
		return Response{}, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}

	xr := [2]float64{defaultLo, defaultHi}
	if req.XRange != nil {
		xr = *req.XRange
	}
	yr := [2]float64{defaultLo, defaultHi}
	if req.YRange != nil {
		yr = *req.YRange
	}

	bound := make(map[string]float64, len(req.Parameters))
	for k, v := range req.Parameters {
		bound[strings.ToLower(strings.TrimSpace(k))] = v
	}

	resp := Response{
		Function:   Curve{Points: emptySeries(), Expression: exprSrc},
		Parameters: freeParameters(exprSrc, bound),
		XRange:     xr,
		YRange:     yr,
	}

	if len(resp.Parameters) > 0 {
		// Bind the free names to a dummy value so syntax errors still
		// surface. "a*x + b" is a request for sliders, "a b" is not.
		probe := make(map[string]float64, len(bound)+len(resp.Parameters))
		for k, v := range bound {
			probe[k] = v
		}
		for _, name := range resp.Parameters {
			probe[name] = 1
		}
		if _, err := mathexpr.CompileWith(exprSrc, probe); err != nil {
			return Response{}, fmt.Errorf("%w: %s", ErrInvalidExpression, exprSrc)
		}
		if req.IncludeDerivative {
			resp.Derivative = &Curve{Points: emptySeries(), Expression: "d/dx " + exprSrc}
		}
		if req.IncludeIntegral {
			resp.Integral = &Curve{Points: emptySeries(), Expression: "∫ " + exprSrc + " dx"}
		}
		if wantAnnotations(req) {
			resp.Annotations = []Annotation{}
		}
		return resp, nil
	}

	fn, err := mathexpr.CompileWith(exprSrc, bound)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %s", ErrInvalidExpression, exprSrc)
	}

	resp.Function.Points = sample(fn, xr)

	if req.IncludeDerivative {
		resp.Derivative = &Curve{
			Points:     sample(derivativeOf(fn), xr),
			Expression: "d/dx " + exprSrc,
		}
	}
	if req.IncludeIntegral {
		resp.Integral = &Curve{
			Points:     integrate(fn, xr),
			Expression: "∫ " + exprSrc + " dx",
		}
	}
	if wantAnnotations(req) {
		resp.Annotations = annotate(fn, xr)
	}
	return resp, nil
}

func wantAnnotations(req Request) bool {
	return req.IncludeAnnotations == nil || *req.IncludeAnnotations
}

func emptySeries() Series {
	return Series{X: []float64{}, Y: []float64{}}
}

func freeParameters(expr string, bound map[string]float64) []string {
	free := []string{}
	for _, name := range mathexpr.FreeNames(expr) {
		if name == "x" {
			continue
		}
		if _, ok := bound[name]; ok {
			continue
		}
		free = append(free, name)
	}
	return free
}

// grid returns numPoints evenly spaced x values across xr, endpoints
// included, plus the step between them.
func grid(xr [2]float64) ([]float64, float64) {
	step := (xr[1] - xr[0]) / float64(numPoints-1)
	xs := make([]float64, numPoints)
	for i := range xs {
		xs[i] = xr[0] + float64(i)*step
	}
	return xs, step
}

// sample evaluates fn on the grid, dropping non-finite values so one
// pole does not break the whole series.
func sample(fn mathexpr.Func, xr [2]float64) Series {
	xs, _ := grid(xr)
	out := Series{X: make([]float64, 0, len(xs)), Y: make([]float64, 0, len(xs))}
	for _, x := range xs {
		y := fn(x)
		if !isFinite(y) {
			continue
		}
		out.X = append(out.X, x)
		out.Y = append(out.Y, y)
	}
	return out
}

// derivativeOf approximates f' by central differences. The step scales
// with |x| so large arguments keep their precision.
func derivativeOf(fn mathexpr.Func) mathexpr.Func {
	return func(x float64) float64 {
		h := derivStep * math.Max(1, math.Abs(x))
		return (fn(x+h) - fn(x-h)) / (2 * h)
	}
}

// integrate accumulates a cumulative trapezoid sum over the grid with
// F(x0) = 0. Intervals touching a non-finite sample contribute nothing,
// which keeps the curve drawable on either side of a pole.
func integrate(fn mathexpr.Func, xr [2]float64) Series {
	xs, step := grid(xr)
	out := Series{X: make([]float64, 0, len(xs)), Y: make([]float64, 0, len(xs))}
	acc := 0.0
	prev := fn(xs[0])
	if isFinite(prev) {
		out.X = append(out.X, xs[0])
		out.Y = append(out.Y, 0)
	}
	for i := 1; i < len(xs); i++ {
		cur := fn(xs[i])
		if isFinite(prev) && isFinite(cur) {
			acc += (prev + cur) / 2 * step
		}
		if isFinite(cur) {
			out.X = append(out.X, xs[i])
			out.Y = append(out.Y, acc)
		}
		prev = cur
	}
	return out
}

// annotate collects critical points, then roots, then the y-intercept.
// The y-intercept is reported even outside xr, matching how the plot
// frontend pins it.
func annotate(fn mathexpr.Func, xr [2]float64) []Annotation {
	anns := []Annotation{}
	anns = append(anns, criticalPoints(fn, xr)...)
	anns = append(anns, roots(fn, xr)...)
	if y := fn(0); isFinite(y) {
		anns = append(anns, Annotation{X: 0, Y: round4(y), Label: "y-intercept", Type: "intercept"})
	}
	return anns
}

// criticalPoints scans f' on the grid for sign changes and refines each
// one by bisection. A zero of f' that does not change sign is a terrace
// and gets the inflection label.
func criticalPoints(fn mathexpr.Func, xr [2]float64) []Annotation {
	d := derivativeOf(fn)
	xs, _ := grid(xr)
	var anns []Annotation

	lastSign := 0
	lastX := 0.0
	zeroAt := math.NaN()
	for _, x := range xs {
		v := d(x)
		if !isFinite(v) {
			lastSign = 0
			zeroAt = math.NaN()
			continue
		}
		s := sign(v)
		if s == 0 {
			if lastSign != 0 {
				zeroAt = x
			}
			continue
		}
		switch {
		case !math.IsNaN(zeroAt):
			anns = append(anns, classify(fn, zeroAt, lastSign, s))
			zeroAt = math.NaN()
		case lastSign != 0 && s != lastSign:
			anns = append(anns, classify(fn, bisect(d, lastX, x), lastSign, s))
		}
		lastSign, lastX = s, x
	}
	return anns
}

// classify labels a horizontal-tangent point by how the slope moves
// through it.
func classify(fn mathexpr.Func, x float64, before, after int) Annotation {
	ann := Annotation{X: round4(x), Y: round4(fn(x))}
	switch {
	case before < 0 && after > 0:
		ann.Label, ann.Type = "local minimum", "min"
	case before > 0 && after < 0:
		ann.Label, ann.Type = "local maximum", "max"
	default:
		ann.Label, ann.Type = "inflection point", "inflection"
	}
	return ann
}

// roots finds x-intercepts inside xr from sign changes of f on the
// grid. Double roots that never cross the axis are not detected; the
// critical-point pass still marks them as extrema.
func roots(fn mathexpr.Func, xr [2]float64) []Annotation {
	xs, _ := grid(xr)
	anns := []Annotation{}
	seen := map[float64]bool{}
	add := func(x float64) {
		rx := round4(x)
		if seen[rx] {
			return
		}
		seen[rx] = true
		anns = append(anns, Annotation{X: rx, Y: 0, Label: "root", Type: "root"})
	}

	lastSign := 0
	lastX := 0.0
	for _, x := range xs {
		v := fn(x)
		if !isFinite(v) {
			lastSign = 0
			continue
		}
		s := sign(v)
		if s == 0 {
			add(x)
			lastSign = 0
			continue
		}
		if lastSign != 0 && s != lastSign {
			add(bisect(fn, lastX, x))
		}
		lastSign, lastX = s, x
	}
	return anns
}

// bisect narrows a sign change of fn inside [lo, hi] down to machine
// precision. Callers guarantee fn(lo) and fn(hi) have opposite signs.
func bisect(fn mathexpr.Func, lo, hi float64) float64 {
	flo := fn(lo)
	for i := 0; i < 64 && math.Abs(hi-lo) > 1e-12; i++ {
		mid := (lo + hi) / 2
		fm := fn(mid)
		if fm == 0 {
			return mid
		}
		if (flo < 0) == (fm < 0) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
