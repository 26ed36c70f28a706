package frames

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notargets/gofv/grid"
	"github.com/notargets/gofv/state"
)

// Read reconstructs the solution of one frame. The grid comes back on the
// identity mapping since mappings are code, not data; callers that need the
// physical grid install their Mapper on the returned state.
func Read(dir string, frame int) (sol *state.Solution, err error) {
	var (
		t                    float64
		meqn, naux, ndim, ns int
	)
	err = withReader(fileName(dir, "t", frame), func(r *bufio.Reader) (err error) {
		if t, err = readFloat(r); err != nil {
			return
		}
		for _, p := range []*int{&meqn, &ns, &naux, &ndim} {
			if *p, err = readInt(r); err != nil {
				return
			}
		}
		return
	})
	if err != nil {
		return
	}
	if ns != 1 {
		return nil, fmt.Errorf("frames: %d states in frame %d, only one is supported", ns, frame)
	}
	var st *state.State
	err = withReader(fileName(dir, "q", frame), func(r *bufio.Reader) (err error) {
		var dims []grid.Dimension
		if dims, err = readGridHeader(r, ndim); err != nil {
			return
		}
		var g *grid.Grid
		if g, err = grid.NewGrid(dims); err != nil {
			return
		}
		if st, err = state.NewState(g, meqn, naux); err != nil {
			return
		}
		return readValues(r, st.Q)
	})
	if err != nil {
		return
	}
	if naux > 0 {
		err = withReader(fileName(dir, "a", frame), func(r *bufio.Reader) (err error) {
			if _, err = readGridHeader(r, ndim); err != nil {
				return
			}
			return readValues(r, st.Aux)
		})
		if errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		if err != nil {
			return
		}
	}
	sol = &state.Solution{State: st, T: t}
	return
}

func withReader(path string, fn func(r *bufio.Reader) error) (err error) {
	var file *os.File
	if file, err = os.Open(path); err != nil {
		return
	}
	defer file.Close()
	if err = fn(bufio.NewReader(file)); err != nil {
		err = fmt.Errorf("frames: reading %s: %w", path, err)
	}
	return
}

func readGridHeader(r *bufio.Reader, ndim int) (dims []grid.Dimension, err error) {
	// grid_number, AMR_level
	for i := 0; i < 2; i++ {
		if _, err = readInt(r); err != nil {
			return
		}
	}
	var (
		names = make([]string, ndim)
		n     = make([]int, ndim)
		low   = make([]float64, ndim)
		dx    = make([]float64, ndim)
		line  string
	)
	for d := 0; d < ndim; d++ {
		if line, err = getLine(r); err != nil {
			return
		}
		var label string
		if _, err = fmt.Sscanf(line, "%d %s", &n[d], &label); err != nil {
			return nil, fmt.Errorf("unable to read cell count from [%s]: %w", line, err)
		}
		names[d] = strings.TrimPrefix(label, "m")
	}
	for d := 0; d < ndim; d++ {
		if low[d], err = readFloat(r); err != nil {
			return
		}
	}
	for d := 0; d < ndim; d++ {
		if dx[d], err = readFloat(r); err != nil {
			return
		}
	}
	dims = make([]grid.Dimension, ndim)
	for d := range dims {
		dims[d] = grid.NewDimension(names[d], low[d], low[d]+dx[d]*float64(n[d]), n[d])
	}
	return
}

func readValues(r *bufio.Reader, f *state.Field) (err error) {
	var line string
	for c := 0; c < f.NumInterior(); c++ {
		if line, err = getDataLine(r); err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) != f.NumVars {
			return fmt.Errorf("cell %d has %d values, want %d", c, len(fields), f.NumVars)
		}
		for m, s := range fields {
			if _, err = fmt.Sscanf(s, "%g", &f.Data[m+f.NumVars*c]); err != nil {
				return fmt.Errorf("cell %d: %w", c, err)
			}
		}
	}
	return
}

func getLine(r *bufio.Reader) (line string, err error) {
	line, err = r.ReadString('\n')
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return
	}
	line = strings.TrimRight(line, "\r\n")
	return
}

// getDataLine skips the blank separators between grid rows.
func getDataLine(r *bufio.Reader) (line string, err error) {
	for {
		if line, err = getLine(r); err != nil {
			return
		}
		if strings.TrimSpace(line) != "" {
			return
		}
	}
}

func readInt(r *bufio.Reader) (n int, err error) {
	var line string
	if line, err = getDataLine(r); err != nil {
		return
	}
	if _, err = fmt.Sscanf(line, "%d", &n); err != nil {
		err = fmt.Errorf("unable to read number from [%s]: %w", line, err)
	}
	return
}

func readFloat(r *bufio.Reader) (x float64, err error) {
	var line string
	if line, err = getDataLine(r); err != nil {
		return
	}
	if _, err = fmt.Sscanf(line, "%g", &x); err != nil {
		err = fmt.Errorf("unable to read value from [%s]: %w", line, err)
	}
	return
}
