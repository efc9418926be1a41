package gemini

// Default model identifiers per capability.
const (
	ModelChat      = "gemini-3-pro-preview"
	ModelFast      = "gemini-2.5-flash"
	ModelMealImage = "gemini-3-pro-image-preview"
	ModelImageEdit = "gemini-2.5-flash-image"
	ModelVideo     = "veo-3.1-fast-generate-preview"
	ModelAnalysis  = "gemini-3-pro-preview"
)

// Video job parameters.
const (
	VideoResolution  = "720p"
	VideoAspectRatio = "16:9"
	VideoCount       = 1
)

// CredentialErrorMessage is what the API reports when the configured key is
// unknown, revoked or expired for the requested model.
const CredentialErrorMessage = "Requested entity was not found"
