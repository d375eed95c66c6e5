package constants

// Redis key formats
const (
	KeyRiderGeo = "riders:geo" // geo set of live rider positions
)
