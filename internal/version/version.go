// Package version contains build version information.
package version

// Set at build time via -ldflags "-X github.com/bissquit/fieldops/internal/version.Version=...".
var (
	Version   = "0.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// Get returns the build information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    GitCommit,
		BuildDate: BuildDate,
	}
}

func (i Info) String() string {
	return i.Version + " (commit " + i.Commit + ", built " + i.BuildDate + ")"
}
