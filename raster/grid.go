package raster

// Dimensions is the width and height of a raster.
type Dimensions struct {
	W, H uint32
}

// Area returns W×H.
// Complexity: O(1).
func (d Dimensions) Area() int {
	return int(d.W) * int(d.H)
}

// Contains reports whether (x,y) lies within the raster.
// Complexity: O(1).
func (d Dimensions) Contains(x, y uint32) bool {
	return x < d.W && y < d.H
}

// Index maps (x,y) to a row-major index: y*W + x.
// Complexity: O(1).
func (d Dimensions) Index(x, y uint32) int {
	return int(y)*int(d.W) + int(x)
}

// Coordinate converts a row-major index back to (x,y).
// Complexity: O(1).
func (d Dimensions) Coordinate(idx int) Point2D {
	return Point2D{X: uint32(idx % int(d.W)), Y: uint32(idx / int(d.W))}
}

// Neighbor returns the point adjacent to p in direction dir.
// The second result is false when the neighbor would leave the raster;
// unsigned wrap-around at x=0 or y=0 is caught by the bounds check.
// Complexity: O(1).
func (d Dimensions) Neighbor(p Point2D, dir Direction) (Point2D, bool) {
	n := p
	switch dir {
	case Left:
		n.X = p.X - 1
	case Right:
		n.X = p.X + 1
	case Up:
		n.Y = p.Y - 1
	case Down:
		n.Y = p.Y + 1
	default:
		return Point2D{}, false
	}
	if !d.Contains(n.X, n.Y) {
		return Point2D{}, false
	}

	return n, true
}
