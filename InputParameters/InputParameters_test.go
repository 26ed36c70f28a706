package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/bc"
	"github.com/notargets/gofv/controller"
	"github.com/notargets/gofv/solver"
)

var deck = []byte(`
########################################
Title: "Four quadrants"
Model: quadrants
Gamma: 1.4
Grid:
  - Name: x
    Lower: 0
    Upper: 1
    NumCells: 80
  - Name: y
    Lower: 0
    Upper: 1
    NumCells: 40
Order: 2
Limiter: MC
DimSplit: false
OrderTrans: 1
CFLDesired: 0.8
DtVariable: true
FinalTime: 0.8
NumOutput: 4
MaxRetries: 0
BCs:
  q:
    lower: [extrap]
    upper: [extrap, wall]
########################################
`)

func TestParse(t *testing.T) {
	var ip InputParameters
	require.NoError(t, ip.Parse(deck))
	assert.Equal(t, "Four quadrants", ip.Title)
	assert.Equal(t, 1.4, ip.Gamma)
	ip.Print()

	cfg, err := ip.SolverConfig()
	require.NoError(t, err)
	assert.Equal(t, solver.MC, cfg.Limiter)
	assert.False(t, cfg.DimSplit)
	assert.Equal(t, 1, cfg.OrderTrans)
	assert.Equal(t, 0.8, cfg.CFLDesired)
	assert.Equal(t, solver.DefaultConfig().CFLMax, cfg.CFLMax)

	ccfg, err := ip.ControllerConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.8, ccfg.TFinal)
	assert.Equal(t, 4, ccfg.NumOutput)
	assert.Equal(t, controller.OutEqual, ccfg.OutStyle)
	assert.Equal(t, 0, ccfg.MaxRetries)

	dims, err := ip.Dimensions()
	require.NoError(t, err)
	require.Len(t, dims, 2)
	assert.Equal(t, 40, dims[1].NumCells)
	assert.InDelta(t, 1./80, dims[0].Delta(), 1.e-15)

	lo, hi, err := ip.BoundaryTypes("q", 2)
	require.NoError(t, err)
	assert.Equal(t, []bc.Type{bc.Extrap, bc.Extrap}, lo)
	assert.Equal(t, []bc.Type{bc.Extrap, bc.Wall}, hi)
	lo, hi, err = ip.BoundaryTypes("aux", 2)
	require.NoError(t, err)
	assert.Nil(t, lo)
	assert.Nil(t, hi)
}

func TestParseErrors(t *testing.T) {
	var ip InputParameters
	require.NoError(t, ip.Parse([]byte(`
Limiter: koren
Grid:
  - Lower: 1
    Upper: 0
    NumCells: 10
BCs:
  q:
    lower: [periodic, periodic, periodic]
    upper: [sticky]
`)))
	_, err := ip.SolverConfig()
	assert.Error(t, err)
	_, err = ip.Dimensions()
	assert.Error(t, err)
	_, _, err = ip.BoundaryTypes("q", 2)
	assert.Error(t, err)
	ip.BCs["q"]["lower"] = []string{"periodic"}
	_, _, err = ip.BoundaryTypes("q", 2)
	assert.Error(t, err)
	_, err = (&InputParameters{}).Dimensions()
	assert.Error(t, err)
}
