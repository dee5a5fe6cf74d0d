package common

// Catalog query keys (OpenSearch / Solr syntax of the DHuS catalog)
const (
	KeyPlatformName         = "platformName"
	KeyFootprint            = "footprint"
	KeyBeginPosition        = "beginPosition"
	KeyEndPosition          = "endPosition"
	KeyRelativeOrbit        = "relativeOrbitNumber"
	KeyOrbit                = "orbitNumber"
	KeyProductType          = "producttype"
	KeyCloudCoverPercentage = "cloudcoverpercentage"
	KeyFilename             = "filename"

	// Query parameters
	ParamRows  = "rows"
	ParamStart = "start"
	ParamQuery = "q"
)

// Platforms
const (
	PlatformSentinel1 = "Sentinel-1"
	PlatformSentinel2 = "Sentinel-2"
)
