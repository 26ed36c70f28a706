// Package frames writes and reads solution frames in the clawpack ascii
// layout: fort.tNNNN carries the frame header, fort.qNNNN the conserved
// values and fort.aNNNN the aux values, one cell per line with the first
// dimension varying fastest.
package frames

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/notargets/gofv/state"
)

const MetaFile = "run.json"

// Meta describes a run directory.
type Meta struct {
	RunID   string    `json:"run_id"`
	Title   string    `json:"title,omitempty"`
	Created time.Time `json:"created"`
	NumEqn  int       `json:"num_eqn"`
	NumAux  int       `json:"num_aux"`
	NumDim  int       `json:"num_dim"`
	Dims    []string  `json:"dims"`
	Shape   []int     `json:"shape"`
}

type Writer struct {
	Dir      string
	Title    string
	WriteAux bool

	mu    sync.Mutex
	runID uuid.UUID
}

func NewWriter(dir, title string, writeAux bool) *Writer {
	return &Writer{Dir: dir, Title: title, WriteAux: writeAux}
}

// RunID is the id recorded in run.json, uuid.Nil before the first frame.
func (w *Writer) RunID() uuid.UUID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runID
}

func fileName(dir, kind string, frame int) string {
	return filepath.Join(dir, fmt.Sprintf("fort.%s%04d", kind, frame))
}

func (w *Writer) WriteFrame(frame int, sol *state.Solution) (err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := sol.State
	if w.runID == uuid.Nil {
		if err = os.MkdirAll(w.Dir, 0755); err != nil {
			return
		}
		if err = w.writeMeta(st); err != nil {
			return
		}
	}
	if err = w.writeHeader(frame, sol); err != nil {
		return
	}
	if err = writeValues(fileName(w.Dir, "q", frame), st, st.Q); err != nil {
		return
	}
	if w.WriteAux && st.NumAux > 0 {
		err = writeValues(fileName(w.Dir, "a", frame), st, st.Aux)
	}
	return
}

func (w *Writer) writeMeta(st *state.State) (err error) {
	id := uuid.New()
	m := Meta{
		RunID:   id.String(),
		Title:   w.Title,
		Created: time.Now().UTC(),
		NumEqn:  st.NumEqn,
		NumAux:  st.NumAux,
		NumDim:  st.Grid.NumDim(),
		Shape:   st.Grid.Shape(),
	}
	for _, d := range st.Grid.Dimensions() {
		m.Dims = append(m.Dims, d.Name)
	}
	var b []byte
	if b, err = json.MarshalIndent(m, "", "  "); err != nil {
		return
	}
	if err = os.WriteFile(filepath.Join(w.Dir, MetaFile), b, 0644); err != nil {
		return
	}
	w.runID = id
	return
}

func (w *Writer) writeHeader(frame int, sol *state.Solution) (err error) {
	var (
		st   = sol.State
		file *os.File
	)
	if file, err = os.Create(fileName(w.Dir, "t", frame)); err != nil {
		return
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	bw := bufio.NewWriter(file)
	fmt.Fprintf(bw, "%18.8e     time\n", sol.T)
	fmt.Fprintf(bw, "%5d                  num_eqn\n", st.NumEqn)
	fmt.Fprintf(bw, "%5d                  nstates\n", 1)
	fmt.Fprintf(bw, "%5d                  num_aux\n", st.NumAux)
	fmt.Fprintf(bw, "%5d                  num_dim\n", st.Grid.NumDim())
	fmt.Fprintf(bw, "%5d                  num_ghost\n", 0)
	return bw.Flush()
}

func writeValues(path string, st *state.State, f *state.Field) (err error) {
	var file *os.File
	if file, err = os.Create(path); err != nil {
		return
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	var (
		bw    = bufio.NewWriter(file)
		g     = st.Grid
		shape = g.Shape()
		dims  = g.Dimensions()
	)
	fmt.Fprintf(bw, "%5d                  grid_number\n", 1)
	fmt.Fprintf(bw, "%5d                  AMR_level\n", 1)
	for _, d := range dims {
		fmt.Fprintf(bw, "%5d                  m%s\n", d.NumCells, d.Name)
	}
	for _, d := range dims {
		fmt.Fprintf(bw, "%18.8e     %slow\n", d.Lower, d.Name)
	}
	for _, d := range dims {
		fmt.Fprintf(bw, "%18.8e     d%s\n", d.Delta(), d.Name)
	}
	fmt.Fprintln(bw)
	nx := shape[0]
	for c := 0; c < f.NumInterior(); c++ {
		for m := 0; m < f.NumVars; m++ {
			fmt.Fprintf(bw, "%18.8e", f.Data[m+f.NumVars*c])
		}
		fmt.Fprintln(bw)
		if len(shape) > 1 && (c+1)%nx == 0 {
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}
