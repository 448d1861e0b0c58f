package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDEMType(t *testing.T) {
	for _, s := range []string{"dsm", "DTM", "density"} {
		_, err := ParseDEMType(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseDEMType("chm")
	assert.Error(t, err)
}

func TestDEMType_DefaultProducts(t *testing.T) {
	assert.Equal(t, []Product{ProductDensity, ProductMax}, DSM.DefaultProducts())
	assert.Equal(t, []Product{ProductDensity, ProductMin, ProductIDW}, DTM.DefaultProducts())
	assert.Equal(t, []Product{ProductDensity}, Density.DefaultProducts())
}

func TestProduct_OutputType(t *testing.T) {
	assert.Equal(t, "count", ProductDensity.OutputType())
	assert.Equal(t, "idw", ProductIDW.OutputType())
}

func TestParseProducts(t *testing.T) {
	products, err := ParseProducts([]string{"den", "MAX"})
	require.NoError(t, err)
	assert.Equal(t, []Product{ProductDensity, ProductMax}, products)

	_, err = ParseProducts([]string{"den", "median"})
	assert.Error(t, err)
}

func TestOutputNames(t *testing.T) {
	site := &Site{Name: "plot1"}

	base, err := OutputBase("/out", site, DTM, "_v2", "0.56")
	require.NoError(t, err)
	assert.Equal(t, "/out/plot1_dtm_v2_r0.56", base)
	assert.Equal(t, "/out/plot1_dtm_v2_r0.56.den.tif", ProductPath(base, ProductDensity))

	base, err = OutputBase("/out", nil, DSM, "", "1.0")
	require.NoError(t, err)
	assert.Equal(t, "/out/dsm_r1.0.max.tif", ProductPath(base, ProductMax))

	assert.Equal(t, "/out/plot1_dtm_v2.min.tif", GapFillPath("/out", site, DTM, "_v2", ProductMin))
	assert.Equal(t, "/out/dsm.max.tif", GapFillPath("/out", nil, DSM, "", ProductMax))
}

func TestTranspose(t *testing.T) {
	sets := []ProductSet{
		{ProductDensity: "r0.5.den", ProductMax: "r0.5.max"},
		{ProductDensity: "r1.0.den", ProductMax: "r1.0.max"},
		{ProductDensity: "r2.0.den", ProductMax: "r2.0.max"},
	}

	series := Transpose(sets)
	assert.Equal(t, ProductSeries{
		ProductDensity: {"r0.5.den", "r1.0.den", "r2.0.den"},
		ProductMax:     {"r0.5.max", "r1.0.max", "r2.0.max"},
	}, series)

	assert.Empty(t, Transpose(nil))
}

func TestProductSet_Ordering(t *testing.T) {
	set := ProductSet{ProductMax: "b", ProductDensity: "a", ProductMin: "c"}
	assert.Equal(t, []Product{ProductDensity, ProductMax, ProductMin}, set.Products())
	assert.Equal(t, []string{"a", "b", "c"}, set.Paths())
}

func TestCheckProducts(t *testing.T) {
	all := []Product{ProductDensity, ProductMin, ProductMax, ProductMean, ProductIDW, ProductStdev}
	assert.NoError(t, CheckProducts(DSM, all))
	assert.NoError(t, CheckProducts(DTM, all))
	assert.NoError(t, CheckProducts(Density, []Product{ProductDensity}))

	err := CheckProducts(Density, []Product{ProductDensity, ProductIDW})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idw")
}
