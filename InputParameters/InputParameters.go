package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/gofv/bc"
	"github.com/notargets/gofv/controller"
	"github.com/notargets/gofv/grid"
	"github.com/notargets/gofv/solver"
)

type DimensionSpec struct {
	Name     string  `json:"Name"`
	Lower    float64 `json:"Lower"`
	Upper    float64 `json:"Upper"`
	NumCells int     `json:"NumCells"`
}

// Parameters obtained from the YAML input file. Zero values take the solver
// and controller defaults.
type InputParameters struct {
	Title      string          `json:"Title"`
	Model      string          `json:"Model"`
	Grid       []DimensionSpec `json:"Grid"`
	Gamma      float64         `json:"Gamma"`
	EntropyFix bool            `json:"EntropyFix"`

	Order      int      `json:"Order"`
	Limiter    string   `json:"Limiter"`
	DimSplit   *bool    `json:"DimSplit"`
	OrderTrans *int     `json:"OrderTrans"`
	CFLDesired float64  `json:"CFLDesired"`
	CFLMax     float64  `json:"CFLMax"`
	DtInitial  float64  `json:"DtInitial"`
	DtMax      float64  `json:"DtMax"`
	DtMin      *float64 `json:"DtMin"`
	DtVariable *bool    `json:"DtVariable"`
	Workers    int      `json:"Workers"`

	FinalTime      float64   `json:"FinalTime"`
	NumOutput      int       `json:"NumOutput"`
	OutStyle       int       `json:"OutStyle"`
	OutTimes       []float64 `json:"OutTimes"`
	StepsPerOutput int       `json:"StepsPerOutput"`
	MaxSteps       int       `json:"MaxSteps"`
	MaxRetries     *int      `json:"MaxRetries"`

	// BCs is keyed by field ("q" or "aux"), then face ("lower" or "upper"),
	// with one boundary type name per dimension.
	BCs map[string]map[string][]string `json:"BCs"`
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Model\n", ip.Model)
	for _, d := range ip.Grid {
		fmt.Printf("[%s: %g, %g, %d]\t= Grid\n", d.Name, d.Lower, d.Upper, d.NumCells)
	}
	if cfg, err := ip.SolverConfig(); err == nil {
		fmt.Printf("[%s]\t= Solver\n", cfg)
	}
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("[%d]\t\t\t\t= NumOutput\n", ip.NumOutput)
	keys := make([]string, 0, len(ip.BCs))
	for k := range ip.BCs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, ip.BCs[key])
	}
}

func (ip *InputParameters) SolverConfig() (cfg solver.Config, err error) {
	cfg = solver.DefaultConfig()
	if ip.Order != 0 {
		cfg.Order = ip.Order
	}
	if ip.Limiter != "" {
		if cfg.Limiter, err = solver.ParseLimiter(ip.Limiter); err != nil {
			return
		}
	}
	if ip.DimSplit != nil {
		cfg.DimSplit = *ip.DimSplit
	}
	if ip.OrderTrans != nil {
		cfg.OrderTrans = *ip.OrderTrans
	}
	if ip.CFLDesired != 0 {
		cfg.CFLDesired = ip.CFLDesired
	}
	if ip.CFLMax != 0 {
		cfg.CFLMax = ip.CFLMax
	}
	if ip.DtInitial != 0 {
		cfg.DtInitial = ip.DtInitial
	}
	if ip.DtMax != 0 {
		cfg.DtMax = ip.DtMax
	}
	if ip.DtMin != nil {
		cfg.DtMin = *ip.DtMin
	}
	if ip.DtVariable != nil {
		cfg.DtVariable = *ip.DtVariable
	}
	cfg.Workers = ip.Workers
	err = cfg.Validate()
	return
}

func (ip *InputParameters) ControllerConfig() (cfg controller.Config, err error) {
	cfg = controller.DefaultConfig()
	if ip.FinalTime != 0 {
		cfg.TFinal = ip.FinalTime
	}
	if ip.NumOutput != 0 {
		cfg.NumOutput = ip.NumOutput
	}
	if ip.OutStyle != 0 {
		cfg.OutStyle = controller.OutStyle(ip.OutStyle)
	}
	cfg.OutTimes = ip.OutTimes
	cfg.StepsPerOutput = ip.StepsPerOutput
	if ip.MaxSteps != 0 {
		cfg.MaxSteps = ip.MaxSteps
	}
	if ip.MaxRetries != nil {
		cfg.MaxRetries = *ip.MaxRetries
	}
	err = cfg.Validate()
	return
}

func (ip *InputParameters) Dimensions() (dims []grid.Dimension, err error) {
	if len(ip.Grid) == 0 {
		return nil, fmt.Errorf("input deck has no Grid section")
	}
	for d, ds := range ip.Grid {
		name := ds.Name
		if name == "" {
			name = []string{"x", "y", "z"}[d%3]
		}
		if ds.NumCells < 1 || !(ds.Upper > ds.Lower) {
			return nil, fmt.Errorf("grid dimension %s: need NumCells >= 1 and Upper > Lower, have %d, [%g, %g]",
				name, ds.NumCells, ds.Lower, ds.Upper)
		}
		dims = append(dims, grid.NewDimension(name, ds.Lower, ds.Upper, ds.NumCells))
	}
	return
}

// BoundaryTypes returns the per dimension lower and upper types for field
// "q" or "aux". A missing entry yields nil slices; a single name applies to
// every dimension.
func (ip *InputParameters) BoundaryTypes(field string, ndim int) (lower, upper []bc.Type, err error) {
	faces, ok := ip.BCs[strings.ToLower(field)]
	if !ok {
		return
	}
	parse := func(face string) (types []bc.Type, err error) {
		names := faces[face]
		switch len(names) {
		case 0:
			return
		case 1:
			for len(names) < ndim {
				names = append(names, names[0])
			}
		}
		if len(names) != ndim {
			return nil, fmt.Errorf("BCs[%s][%s]: %d entries for %d dimensions", field, face, len(names), ndim)
		}
		types = make([]bc.Type, ndim)
		for d, name := range names {
			if types[d], err = bc.ParseType(name); err != nil {
				return nil, fmt.Errorf("BCs[%s][%s][%d]: %w", field, face, d, err)
			}
		}
		return
	}
	if lower, err = parse("lower"); err != nil {
		return
	}
	upper, err = parse("upper")
	return
}
