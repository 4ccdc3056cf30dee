package tt

import "math"

// Decoding of glyph outlines from table 'glyf'.
//
// The 'glyf' table is comprised of a list of glyph data blocks, each of which
// provides the description for a single glyph. Glyphs are referenced by
// identifiers (glyph IDs), which are sequential integers beginning at zero.
// The 'glyf' table does not include any overall table header or records
// providing offsets to glyph data blocks. Rather, the 'loca' table provides
// an array of offsets, indexed by glyph IDs, which provide the location of
// each glyph data block within the 'glyf' table. Note that the 'glyf' table
// must always be used in conjunction with the 'loca' and 'maxp' tables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/glyf

// Point is one outline point in font units. Off-curve points are the control
// points of quadratic Bézier segments.
type Point struct {
	X, Y    int32
	OnCurve bool
}

// Contour is a closed sequence of outline points.
type Contour []Point

// GlyphOutline is the decoded outline of one glyph. For composite glyphs the
// contours of all components are resolved, transformed and flattened into
// Contours, with the component references retained in Components.
//
// An outline without contours is valid; glyphs like the space character
// carry no outline data at all.
type GlyphOutline struct {
	Glyph      GlyphIndex
	XMin       int16 // bounding box as stated in the glyph header
	YMin       int16
	XMax       int16
	YMax       int16
	Contours   []Contour
	Components []ComponentRef // direct components, empty for simple glyphs
}

// IsComposite reports whether the glyph was assembled from components.
func (o *GlyphOutline) IsComposite() bool {
	return len(o.Components) > 0
}

// PointCount returns the total number of points over all contours.
func (o *GlyphOutline) PointCount() int {
	n := 0
	for _, c := range o.Contours {
		n += len(c)
	}
	return n
}

// ComponentRef describes one component of a composite glyph.
type ComponentRef struct {
	Glyph     GlyphIndex
	Flags     ComponentFlag
	Transform Transform
}

// Transform is the 2x2 linear map plus offset applied to a component:
//
//	x' = A*x + C*y + DX
//	y' = B*x + D*y + DY
//
// The identity transform has A = D = 1. For point-matching components the
// offset is derived from the matched points rather than stored arguments.
type Transform struct {
	A, B, C, D float64
	DX, DY     float64
}

func identityTransform() Transform {
	return Transform{A: 1, D: 1}
}

func (t Transform) apply(p Point) Point {
	x := t.A*float64(p.X) + t.C*float64(p.Y) + t.DX
	y := t.B*float64(p.X) + t.D*float64(p.Y) + t.DY
	return Point{
		X:       int32(math.Round(x)),
		Y:       int32(math.Round(y)),
		OnCurve: p.OnCurve,
	}
}

// f2dot14 is a signed fixed-point number with 14 fractional bits, used for
// the scale values of composite components.
type f2dot14 int16

func (f f2dot14) float() float64 {
	return float64(f) / 16384
}

// Flags of simple glyph points.
type simpleGlyphFlag uint8

const (
	onCurvePoint simpleGlyphFlag = 1 << iota
	xShortVector
	yShortVector
	repeatFlag
	xIsSameOrPositiveVector
	yIsSameOrPositiveVector
)

// ComponentFlag carries the per-component flag word of a composite glyph.
type ComponentFlag uint16

const (
	arg1And2AreWords ComponentFlag = 1 << iota // If set, the args are 16-bit (uint16/int16), otherwise uint8/int8.
	argsAreXYValues                            // If set, the args are signed xy values (otherwise point indices).
	roundXYToGrid
	weHaveAScale
	_              // reserved
	moreComponents // Indicates at least one glyph following this one.
	weHaveAnXAndYScale
	weHaveATwoByTwo
	weHaveInstructions
	useMyMetrics
	overlapCompound
	scaledComponentOffset
	unscaledComponentOffset
)

// IsSet checks if bit `flag` is set in `f`.
func (f ComponentFlag) IsSet(flag ComponentFlag) bool {
	return f&flag != 0
}

// --- Outline decoding ------------------------------------------------------

// GlyphOutline decodes the outline of a single glyph. Composite glyphs are
// resolved recursively; the nesting depth is bounded by MaxCompositeDepth and
// reference cycles are detected. Decoding a glyph does not touch the data
// blocks of unrelated glyphs.
func (tf *Font) GlyphOutline(gid GlyphIndex) (*GlyphOutline, error) {
	if int(gid) >= tf.NumGlyphs() {
		return nil, errInvalidGlyph(gid, tf.NumGlyphs())
	}
	glyf, err := tf.Glyf()
	if err != nil {
		return nil, err
	}
	loca, err := tf.Loca()
	if err != nil {
		return nil, err
	}
	dec := &outlineDecoder{
		glyf:    glyf,
		loca:    loca,
		onStack: make(map[GlyphIndex]bool),
	}
	return dec.outline(gid, 0)
}

// outlineDecoder resolves one outline request. It is not shared between
// requests; onStack tracks the composite path currently being expanded, so
// re-use of a component in sibling branches stays legal while true cycles
// are rejected.
type outlineDecoder struct {
	glyf    *GlyfTable
	loca    *LocaTable
	onStack map[GlyphIndex]bool
}

func (dec *outlineDecoder) outline(gid GlyphIndex, depth int) (*GlyphOutline, error) {
	if depth > MaxCompositeDepth {
		return nil, errCompositeTooDeep(gid)
	}
	start, end, err := dec.loca.GlyphExtent(gid)
	if err != nil {
		return nil, err
	}
	outline := &GlyphOutline{Glyph: gid}
	if start == end {
		return outline, nil // glyph without outline data
	}
	data := binarySegm(dec.glyf.Binary())
	if uint64(end) > uint64(len(data)) {
		return nil, errMalformedTable(tagGlyf, start,
			"glyph %d data [%d:%d] exceeds glyf table size %d", gid, start, end, len(data))
	}
	c := cursorOn(data[start:end], tagGlyf)
	numContours, err := c.readI16()
	if err != nil {
		return nil, err
	}
	if outline.XMin, err = c.readI16(); err != nil {
		return nil, err
	}
	if outline.YMin, err = c.readI16(); err != nil {
		return nil, err
	}
	if outline.XMax, err = c.readI16(); err != nil {
		return nil, err
	}
	if outline.YMax, err = c.readI16(); err != nil {
		return nil, err
	}
	if numContours >= 0 {
		outline.Contours, err = dec.simpleContours(c, gid, int(numContours))
		return outline, err
	}
	dec.onStack[gid] = true
	err = dec.compositeContours(c, gid, depth, outline)
	delete(dec.onStack, gid)
	if err != nil {
		return nil, err
	}
	return outline, nil
}

// simpleContours decodes the point data of a simple glyph: the contour end
// point indices, the flag run, and the delta-encoded coordinates.
func (dec *outlineDecoder) simpleContours(c *cursor, gid GlyphIndex, numContours int) ([]Contour, error) {
	if numContours == 0 {
		return nil, nil
	}
	endPts := make([]uint16, numContours)
	for i := range endPts {
		pt, err := c.readU16()
		if err != nil {
			return nil, err
		}
		if i > 0 && pt < endPts[i-1] {
			return nil, errMalformedTable(tagGlyf, uint32(c.offset()),
				"glyph %d: contour end points not increasing", gid)
		}
		endPts[i] = pt
	}
	numPoints := int(endPts[numContours-1]) + 1
	instructionLength, err := c.readU16()
	if err != nil {
		return nil, err
	}
	if err = c.skip(int(instructionLength)); err != nil {
		return nil, err
	}
	// flags, run-length encoded
	flags := make([]simpleGlyphFlag, 0, numPoints)
	for len(flags) < numPoints {
		fb, err := c.readU8()
		if err != nil {
			return nil, err
		}
		flag := simpleGlyphFlag(fb)
		flags = append(flags, flag)
		if flag&repeatFlag != 0 {
			repeats, err := c.readU8()
			if err != nil {
				return nil, err
			}
			if len(flags)+int(repeats) > numPoints {
				return nil, errMalformedTable(tagGlyf, uint32(c.offset()),
					"glyph %d: flag repeat count overshoots %d points", gid, numPoints)
			}
			for i := 0; i < int(repeats); i++ {
				flags = append(flags, flag)
			}
		}
	}
	points := make([]Point, numPoints)
	var x int32
	for i, flag := range flags {
		switch {
		case flag&xShortVector != 0:
			dx, err := c.readU8()
			if err != nil {
				return nil, err
			}
			if flag&xIsSameOrPositiveVector != 0 {
				x += int32(dx)
			} else {
				x -= int32(dx)
			}
		case flag&xIsSameOrPositiveVector == 0:
			dx, err := c.readI16()
			if err != nil {
				return nil, err
			}
			x += int32(dx)
		}
		points[i].X = x
		points[i].OnCurve = flag&onCurvePoint != 0
	}
	var y int32
	for i, flag := range flags {
		switch {
		case flag&yShortVector != 0:
			dy, err := c.readU8()
			if err != nil {
				return nil, err
			}
			if flag&yIsSameOrPositiveVector != 0 {
				y += int32(dy)
			} else {
				y -= int32(dy)
			}
		case flag&yIsSameOrPositiveVector == 0:
			dy, err := c.readI16()
			if err != nil {
				return nil, err
			}
			y += int32(dy)
		}
		points[i].Y = y
	}
	contours := make([]Contour, numContours)
	first := 0
	for i, endPt := range endPts {
		contours[i] = Contour(points[first : int(endPt)+1])
		first = int(endPt) + 1
	}
	return contours, nil
}

// compositeContours decodes the component list of a composite glyph and
// merges the transformed contours of each component into the outline.
func (dec *outlineDecoder) compositeContours(c *cursor, gid GlyphIndex, depth int, outline *GlyphOutline) error {
	for {
		fl, err := c.readU16()
		if err != nil {
			return err
		}
		flags := ComponentFlag(fl)
		childIndex, err := c.readU16()
		if err != nil {
			return err
		}
		child := GlyphIndex(childIndex)
		if dec.onStack[child] {
			return errCompositeCycle(gid)
		}
		var arg1, arg2 int32
		if flags.IsSet(arg1And2AreWords) {
			a1, err := c.readI16()
			if err != nil {
				return err
			}
			a2, err := c.readI16()
			if err != nil {
				return err
			}
			arg1, arg2 = int32(a1), int32(a2)
			if !flags.IsSet(argsAreXYValues) { // point indices are unsigned
				arg1, arg2 = int32(uint16(a1)), int32(uint16(a2))
			}
		} else {
			a1, err := c.readU8()
			if err != nil {
				return err
			}
			a2, err := c.readU8()
			if err != nil {
				return err
			}
			arg1, arg2 = int32(a1), int32(a2)
			if flags.IsSet(argsAreXYValues) {
				arg1, arg2 = int32(int8(a1)), int32(int8(a2))
			}
		}
		xform := identityTransform()
		switch {
		case flags.IsSet(weHaveAScale):
			s, err := c.readI16()
			if err != nil {
				return err
			}
			scale := f2dot14(s).float()
			xform.A, xform.D = scale, scale
		case flags.IsSet(weHaveAnXAndYScale):
			sx, err := c.readI16()
			if err != nil {
				return err
			}
			sy, err := c.readI16()
			if err != nil {
				return err
			}
			xform.A, xform.D = f2dot14(sx).float(), f2dot14(sy).float()
		case flags.IsSet(weHaveATwoByTwo):
			var m [4]int16
			for i := range m {
				if m[i], err = c.readI16(); err != nil {
					return err
				}
			}
			xform.A = f2dot14(m[0]).float()
			xform.B = f2dot14(m[1]).float()
			xform.C = f2dot14(m[2]).float()
			xform.D = f2dot14(m[3]).float()
		}

		sub, err := dec.outline(child, depth+1)
		if err != nil {
			return err
		}
		if flags.IsSet(argsAreXYValues) {
			xform.DX, xform.DY = float64(arg1), float64(arg2)
		} else {
			// Point matching: arg1 indexes a point in the glyph assembled so
			// far, arg2 a point in the component. The component is shifted so
			// that both points coincide.
			parent, ok := pointAt(outline.Contours, int(arg1))
			if !ok {
				return errMalformedTable(tagGlyf, uint32(c.offset()),
					"glyph %d: component anchor point %d not assembled yet", gid, arg1)
			}
			childPt, ok := pointAt(sub.Contours, int(arg2))
			if !ok {
				return errMalformedTable(tagGlyf, uint32(c.offset()),
					"glyph %d: component %d has no point %d", gid, child, arg2)
			}
			matched := xform.apply(childPt)
			xform.DX = float64(parent.X - matched.X)
			xform.DY = float64(parent.Y - matched.Y)
		}
		for _, contour := range sub.Contours {
			transformed := make(Contour, len(contour))
			for i, p := range contour {
				transformed[i] = xform.apply(p)
			}
			outline.Contours = append(outline.Contours, transformed)
		}
		outline.Components = append(outline.Components, ComponentRef{
			Glyph:     child,
			Flags:     flags,
			Transform: xform,
		})
		if !flags.IsSet(moreComponents) {
			return nil
		}
	}
}

// pointAt resolves a flat point index over a slice of contours.
func pointAt(contours []Contour, index int) (Point, bool) {
	if index < 0 {
		return Point{}, false
	}
	for _, c := range contours {
		if index < len(c) {
			return c[index], true
		}
		index -= len(c)
	}
	return Point{}, false
}
