package wastemap

const (
	FILE_EXT_SHP     = ".shp"
	FILE_EXT_GEOJSON = "geojson"
	SHAPE_ENCODING   = "UTF-8"
	SHP_DRIVER_NAME  = "ESRI Shapefile"
	TIF_DRIVER_NAME  = "GTiff"
	ENCODING_OPTION  = "ENCODING=" + SHAPE_ENCODING
	UNIVERSAL_SRID   = 4326
	OUTPUT_SRID      = 3857

	// 合并区域GeoJSON中的坐标系声明
	OUTPUT_CRS_NAME = "urn:ogc:def:crs:EPSG::3857"

	SHP_FIELD_ID    = "id"
	SHP_FIELD_LABEL = "label"
	SHP_LABEL_WIDTH = 64

	GEOJSON_CLASSIFIED = "classified"

	// 中间结果所在临时子目录的父目录
	TMP_DIR_NAME = ".wastemap_tmp"
)
