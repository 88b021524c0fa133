package spec

// Element is one drawable item of an element-based spec. The renderer knows
// circle, rect, line, triangle, ellipse, polygon, polyline, text, image and
// connector. Optional geometry uses pointers so meaningful zero values
// survive the wire (a horizontal line keeps height 0).
type Element struct {
	Type       string  `json:"type"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Radius     *int    `json:"radius,omitempty"`
	Width      *int    `json:"width,omitempty"`
	Height     *int    `json:"height,omitempty"`
	Label      string  `json:"label,omitempty"`
	Points     []Point `json:"points,omitempty"`
	From       *Point  `json:"from_point,omitempty"`
	To         *Point  `json:"to_point,omitempty"`
	Src        string  `json:"src,omitempty"`
	FontSize   any     `json:"fontSize,omitempty"`
	FontWeight any     `json:"fontWeight,omitempty"`
	TextAlign  string  `json:"textAlign,omitempty"`
	Color      string  `json:"color,omitempty"`
}

// Point is a canvas coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Int returns a pointer to v, for the optional geometry fields.
func Int(v int) *int { return &v }

// Circle builds a circle element.
func Circle(x, y, r int, color string) Element {
	return Element{Type: "circle", X: x, Y: y, Radius: Int(r), Color: color}
}

// Rect builds a rectangle element.
func Rect(x, y, w, h int, color string) Element {
	return Element{Type: "rect", X: x, Y: y, Width: Int(w), Height: Int(h), Color: color}
}

// Triangle builds a triangle element.
func Triangle(x, y, w, h int, color string) Element {
	return Element{Type: "triangle", X: x, Y: y, Width: Int(w), Height: Int(h), Color: color}
}

// Ellipse builds an ellipse element.
func Ellipse(x, y, w, h int, color string) Element {
	return Element{Type: "ellipse", X: x, Y: y, Width: Int(w), Height: Int(h), Color: color}
}

// Line builds a line element; width and height are the run and rise from
// the anchor, either may be negative or zero.
func Line(x, y, w, h int, color string) Element {
	return Element{Type: "line", X: x, Y: y, Width: Int(w), Height: Int(h), Color: color}
}

// Text builds a text element.
func Text(x, y int, label, color string) Element {
	return Element{Type: "text", X: x, Y: y, Label: label, Color: color}
}
