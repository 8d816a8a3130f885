package version

import (
	"fmt"
	"strings"
)

// These variables are populated at build time using ldflags.
// Example: go build -ldflags "-X 'github.com/user00265/ctydatapi/version.GitCommit=f80cf83' -X 'github.com/user00265/ctydatapi/version.BuildVersion=1.0.0'" ...
var (
	// ProjectName is the name of the project.
	ProjectName = "CtyDatAPI"

	// ProjectGitHubURL is the GitHub repository URL.
	ProjectGitHubURL = "https://github.com/user00265/ctydatapi"

	// BuildVersion is the semantic version of the build, e.g. v1.0.0.
	BuildVersion = "unknown"

	// GitCommit is the Git commit hash of the build.
	GitCommit = "unknown"
)

var (
	// ProjectVersion is "X.Y.Z+COMMIT" when both build variables are set, "unknown" otherwise.
	ProjectVersion string

	// UserAgent is the User-Agent sent with outgoing HTTP requests.
	UserAgent string
)

// ldflags values are in place before init runs, unlike package-level initializers
// that depend on them.
func init() {
	ProjectVersion = projectVersion(BuildVersion, GitCommit)
	UserAgent = fmt.Sprintf("%s/%s (+%s)", ProjectName, ProjectVersion, ProjectGitHubURL)
}

func projectVersion(build, commit string) string {
	if build == "unknown" || build == "" || commit == "unknown" || commit == "" {
		return "unknown"
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s+%s", strings.TrimPrefix(build, "v"), commit)
}
