package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// DEMType identifies the kind of elevation model to produce.
type DEMType string

const (
	// DSM is a surface model: every point classified as ground or lower.
	DSM DEMType = "dsm"
	// DTM is a terrain model: ground points only.
	DTM DEMType = "dtm"
	// Density produces point count rasters without class filtering.
	Density DEMType = "density"
)

// ParseDEMType parses a DEM type name.
func ParseDEMType(s string) (DEMType, error) {
	switch t := DEMType(strings.ToLower(s)); t {
	case DSM, DTM, Density:
		return t, nil
	default:
		return "", fmt.Errorf("unknown DEM type %q (want dsm, dtm or density)", s)
	}
}

// DefaultProducts returns the products generated for t when none are requested.
func (t DEMType) DefaultProducts() []Product {
	switch t {
	case DSM:
		return []Product{ProductDensity, ProductMax}
	case DTM:
		return []Product{ProductDensity, ProductMin, ProductIDW}
	default:
		return []Product{ProductDensity}
	}
}

// Product is a raster statistic written by the GDAL writer.
type Product string

const (
	ProductDensity Product = "den"
	ProductMin     Product = "min"
	ProductMax     Product = "max"
	ProductMean    Product = "mean"
	ProductIDW     Product = "idw"
	ProductStdev   Product = "stdev"
)

// ParseProduct parses a product code.
func ParseProduct(s string) (Product, error) {
	switch p := Product(strings.ToLower(s)); p {
	case ProductDensity, ProductMin, ProductMax, ProductMean, ProductIDW, ProductStdev:
		return p, nil
	default:
		return "", fmt.Errorf("unknown product %q", s)
	}
}

// ParseProducts parses a list of product codes.
func ParseProducts(codes []string) ([]Product, error) {
	products := make([]Product, 0, len(codes))
	for _, c := range codes {
		p, err := ParseProduct(c)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Supports reports whether t can produce p. Density rasters carry only the
// point count; surface and terrain models accept every product.
func (t DEMType) Supports(p Product) bool {
	if t == Density {
		return p == ProductDensity
	}
	return true
}

// CheckProducts returns an error naming the first product t cannot produce.
func CheckProducts(t DEMType, products []Product) error {
	for _, p := range products {
		if !t.Supports(p) {
			return fmt.Errorf("product %q is not available for %s", p, t)
		}
	}
	return nil
}

// OutputType returns the writers.gdal output_type for the product.
func (p Product) OutputType() string {
	if p == ProductDensity {
		return "count"
	}
	return string(p)
}

// ProductSet maps each product to its raster path.
type ProductSet map[Product]string

// Products returns the product codes in sorted order.
func (ps ProductSet) Products() []Product {
	products := make([]Product, 0, len(ps))
	for p := range ps {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })
	return products
}

// Paths returns the raster paths ordered by product code.
func (ps ProductSet) Paths() []string {
	paths := make([]string, 0, len(ps))
	for _, p := range ps.Products() {
		paths = append(paths, ps[p])
	}
	return paths
}

// ProductSeries maps each product to its per-radius raster paths, in radius order.
type ProductSeries map[Product][]string

// Transpose converts per-radius product sets into per-product path lists.
// Products are taken from the first set.
func Transpose(sets []ProductSet) ProductSeries {
	series := make(ProductSeries)
	if len(sets) == 0 {
		return series
	}
	for product := range sets[0] {
		paths := make([]string, 0, len(sets))
		for _, set := range sets {
			paths = append(paths, set[product])
		}
		series[product] = paths
	}
	return series
}

// RasterExt is the extension of every raster written by lidar2dems.
const RasterExt = "tif"

func sitePrefix(site *Site) string {
	if site == nil {
		return ""
	}
	return site.Basename() + "_"
}

// OutputBase returns the absolute path, without product and extension, of the
// rasters for one DEM type and radius:
// {outdir}/{site_}{demtype}{suffix}_r{radius}.
func OutputBase(outDir string, site *Site, demType DEMType, suffix, radius string) (string, error) {
	dir, err := filepath.Abs(outDir)
	if err != nil {
		return "", fmt.Errorf("resolve output directory %q: %w", outDir, err)
	}
	name := fmt.Sprintf("%s%s%s_r%s", sitePrefix(site), demType, suffix, radius)
	return filepath.Join(dir, name), nil
}

// ProductPath returns {base}.{product}.tif.
func ProductPath(base string, product Product) string {
	return fmt.Sprintf("%s.%s.%s", base, product, RasterExt)
}

// GapFillPath returns the path of a gap-filled raster, which carries no radius:
// {outdir}/{site_}{demtype}{suffix}.{product}.tif.
func GapFillPath(outDir string, site *Site, demType DEMType, suffix string, product Product) string {
	name := fmt.Sprintf("%s%s%s.%s.%s", sitePrefix(site), demType, suffix, product, RasterExt)
	if dir, err := filepath.Abs(outDir); err == nil {
		outDir = dir
	}
	return filepath.Join(outDir, name)
}
