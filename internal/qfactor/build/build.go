package build

// Set at link time with -ldflags "-X github.com/G-Research/qfactor/internal/qfactor/build.ReleaseVersion=..."
var (
	ReleaseVersion = "UNKNOWN_VERSION"
	GitCommit      = "UNKNOWN_GITCOMMIT"
	BuildTime      = "UNKNOWN_BUILDTIME"
	GoVersion      = "UNKNOWN_GOVERSION"
)
