package wastemap

import "errors"

var (
	ErrGdalDriverCreate  = errors.New("gdal driver create err")
	ErrGdalWrongGeoType  = errors.New("gdal wrong geo type")
	ErrInvalidWKT        = errors.New("invalid WKT")
	ErrInvalidProjection = errors.New("invalid projection")
	ErrInvalidTif        = errors.New("invalid tif")
	ErrEmptyTif          = errors.New("empty tif")
	ErrTifReadFailed     = errors.New("tif read failed")
	ErrTifWriteFailed    = errors.New("tif write failed")
	ErrNotSingleBand     = errors.New("tif must have exactly one band")
	ErrNoBandsRequested  = errors.New("no bands or indices requested")
	ErrClassifierBands   = errors.New("classifier bands differ from configured features")
)
