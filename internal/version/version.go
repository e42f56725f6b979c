package version

// Populated via -ldflags "-X flatfile-shop/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func String() string {
	return "version=" + Version + " commit=" + Commit + " buildTime=" + BuildTime
}
