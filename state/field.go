package state

import "fmt"

// Field is a cell centered array with NumVars values per cell and NumGhost
// ghost layers on every face. Data is laid out variable fastest, then the
// first dimension: Data[m + NumVars*(i + nx*(j + ny*k))] with ghost-padded
// extents nx, ny.
type Field struct {
	NumVars  int
	Shape    []int
	NumGhost int
	Data     []float64
}

func NewField(numVars int, shape []int, numGhost int) (f *Field) {
	f = &Field{
		NumVars:  numVars,
		Shape:    append([]int(nil), shape...),
		NumGhost: numGhost,
	}
	f.Data = make([]float64, numVars*f.NumPadded())
	return
}

func (f *Field) NumDim() int { return len(f.Shape) }

// Extent is the ghost-padded cell count in dimension d.
func (f *Field) Extent(d int) int { return f.Shape[d] + 2*f.NumGhost }

// NumPadded is the total cell count including ghosts.
func (f *Field) NumPadded() (n int) {
	n = 1
	for d := range f.Shape {
		n *= f.Extent(d)
	}
	return
}

// NumInterior is the total cell count excluding ghosts.
func (f *Field) NumInterior() (n int) {
	n = 1
	for _, s := range f.Shape {
		n *= s
	}
	return
}

// Stride is the distance in Data between neighbors in dimension d.
func (f *Field) Stride(d int) (s int) {
	s = f.NumVars
	for dd := 0; dd < d; dd++ {
		s *= f.Extent(dd)
	}
	return
}

// Cell is the linear cell offset (in cells, not values) of a cell whose
// coordinates may lie in the ghost range -NumGhost..Shape[d]+NumGhost-1.
func (f *Field) Cell(idx ...int) (k int) {
	if len(idx) != len(f.Shape) {
		panic(fmt.Errorf("index rank %d does not match field rank %d", len(idx), len(f.Shape)))
	}
	for d := len(idx) - 1; d >= 0; d-- {
		ii := idx[d] + f.NumGhost
		if ii < 0 || ii >= f.Extent(d) {
			panic(fmt.Errorf("index %d out of range [%d,%d) in dimension %d",
				idx[d], -f.NumGhost, f.Shape[d]+f.NumGhost, d))
		}
		k = k*f.Extent(d) + ii
	}
	return
}

// Index is the position in Data of variable m at cell idx.
func (f *Field) Index(m int, idx ...int) int {
	return m + f.NumVars*f.Cell(idx...)
}

func (f *Field) At(m int, idx ...int) float64 { return f.Data[f.Index(m, idx...)] }

func (f *Field) Set(v float64, m int, idx ...int) { f.Data[f.Index(m, idx...)] = v }

// CellValues returns the NumVars values stored at cell idx, aliasing Data.
func (f *Field) CellValues(idx ...int) []float64 {
	k := f.NumVars * f.Cell(idx...)
	return f.Data[k : k+f.NumVars]
}

func (f *Field) Copy() (c *Field) {
	c = &Field{
		NumVars:  f.NumVars,
		Shape:    append([]int(nil), f.Shape...),
		NumGhost: f.NumGhost,
		Data:     append([]float64(nil), f.Data...),
	}
	return
}

// SameInterior reports whether two fields cover the same cells and variables.
func (f *Field) SameInterior(o *Field) bool {
	if f.NumVars != o.NumVars || len(f.Shape) != len(o.Shape) {
		return false
	}
	for d := range f.Shape {
		if f.Shape[d] != o.Shape[d] {
			return false
		}
	}
	return true
}

// CopyInterior copies the interior cells of src into dst. The two fields may
// have different ghost widths.
func CopyInterior(dst, src *Field) error {
	if !dst.SameInterior(src) {
		return fmt.Errorf("state: field shape %v/%d does not match %v/%d",
			dst.Shape, dst.NumVars, src.Shape, src.NumVars)
	}
	var (
		nv  = src.NumVars
		nx  = src.Shape[0]
		row = nv * nx
	)
	// Walk all interior rows of the first dimension
	idx := make([]int, len(src.Shape))
	for {
		ks := nv * src.Cell(idx...)
		kd := nv * dst.Cell(idx...)
		copy(dst.Data[kd:kd+row], src.Data[ks:ks+row])
		d := 1
		for ; d < len(idx); d++ {
			idx[d]++
			if idx[d] < src.Shape[d] {
				break
			}
			idx[d] = 0
		}
		if d == len(idx) {
			break
		}
	}
	return nil
}
