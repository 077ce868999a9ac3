package raster

import "errors"

var (
	ErrShapeMismatch          = errors.New("raster shapes do not match")
	ErrEmptyRaster            = errors.New("raster is empty")
	ErrNotEnoughBands         = errors.New("raster has not enough bands")
	ErrMissingBand            = errors.New("band missing from band set")
	ErrUnknownIndex           = errors.New("unknown band or index name")
	ErrClassifierUnavailable  = errors.New("classifier unavailable")
	ErrClassifierOutput       = errors.New("classifier returned malformed probabilities")
	ErrInvalidTilingLimits    = errors.New("invalid tiling limits")
	ErrNoOverlap              = errors.New("rasters have no common coordinate")
	ErrResolutionMismatch     = errors.New("rasters have different resolution")
	ErrInvalidSections        = errors.New("heatmap sections must be at least 4")
	ErrInvalidLevel           = errors.New("heatmap level must be low, medium or high")
	ErrInvalidAreaMode        = errors.New("area mode must be classified or heatmap")
	ErrDegenerateGeoTransform = errors.New("geotransform is not invertible")
)
