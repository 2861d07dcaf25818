package common

// Dataset columns
const (
	ColFundingTotalUSD = "funding_total_usd"
	ColFundingRounds   = "funding_rounds"
	ColFoundedAt       = "founded_at"
	ColFirstFundingAt  = "first_funding_at"
	ColLastFundingAt   = "last_funding_at"
	ColCountryCode     = "country_code"
	ColStatus          = "status"
)

// Derived feature names
const (
	FeatFundingDurationDays = "funding_duration_days"
	FeatIsInUS              = "is_in_us"
)

// FeatureNames is the ordered feature vector consumed by the model.
var FeatureNames = []string{
	ColFundingTotalUSD,
	ColFundingRounds,
	FeatFundingDurationDays,
	FeatIsInUS,
}

// MandatoryColumns must be present in every training source.
var MandatoryColumns = []string{
	ColFundingTotalUSD,
	ColFundingRounds,
	ColFoundedAt,
	ColFirstFundingAt,
	ColLastFundingAt,
	ColCountryCode,
	ColStatus,
}

// Status labels
const (
	StatusOperating = "operating"
	StatusClosed    = "closed"
	StatusAcquired  = "acquired"
)

// USCountryCode is matched exactly, case-sensitive.
const USCountryCode = "USA"

// Environment variable keys
const (
	EnvConfigFile      = "CONFIG_FILE"
	EnvSourcePath      = "SOURCE_PATH"
	EnvArtifactDir     = "ARTIFACT_DIR"
	EnvSeed            = "SEED"
	EnvEstimators      = "ESTIMATORS"
	EnvTestSize        = "TEST_SIZE"
	EnvMinSamplesSplit = "MIN_SAMPLES_SPLIT"
	EnvMaxDepth        = "MAX_DEPTH"
	EnvServerPort      = "SERVER_PORT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvFetchTimeout    = "FETCH_TIMEOUT"
)

// Configuration defaults
const (
	DefaultSourcePath      = "data/cleaned_investments_VC.csv"
	DefaultArtifactDir     = "output"
	DefaultSeed            = 42
	DefaultEstimators      = 100
	DefaultTestSize        = 0.2
	DefaultMinSamplesSplit = 2
	DefaultMaxDepth        = 0 // unlimited
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
)

// Validation constants
const (
	MinEstimators = 1
	MaxEstimators = 5000
	MinTestSize   = 0.0
	MaxTestSize   = 0.9
	MinServerPort = 1024
	MaxServerPort = 65535
	MaxTreeDepth  = 512
)
