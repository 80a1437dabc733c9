package cmd

// Tracking modes for the vehicle position source. In simulated mode the
// vehicle walks the route on its own; in live mode the authoritative
// position comes from the vehicle tracker gateway.
const (
	TrackingModeSimulated = "simulated"
	TrackingModeLive      = "live"
)

type Config struct {
	HTTPPort             string
	DBHost               string
	DBPort               string
	DBUser               string
	DBPassword           string
	DBName               string
	DBSslMode            string
	OsrmBaseURL          string
	StabilityBaseURL     string
	RedisAddr            string
	ManifestPath         string
	TrackingMode         string
	TrackerBaseURL       string
	AssumedSpeedMps      float64
	LegCacheTTLSeconds   int
	SimBaseTempC         float64
	SimAmplitudeC        float64
	SimPeriodSeconds     int
	ClientTimeoutSeconds int
}
