// Package version exposes build-time metadata for the verify-commit tools.
// The variables are populated via -ldflags by the release build.
package version

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

var (
	// Version is the release tag or short commit of the tool itself.
	// Set via: -ldflags "-X commitverify/internal/version.Version=..."
	Version = "unknown"

	// BuildDate is the ISO 8601 UTC build timestamp.
	// Set via: -ldflags "-X commitverify/internal/version.BuildDate=..."
	BuildDate = "unknown"

	// GitCommit is the commit SHA the binary was built from. The health stub
	// reports it when no commit is configured.
	// Set via: -ldflags "-X commitverify/internal/version.GitCommit=..."
	GitCommit = "unknown"
)

// Info holds build metadata plus per-process runtime identity.
type Info struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildDate  string `json:"build_date"`
	InstanceID string `json:"instance_id"`
	Hostname   string `json:"hostname"`
}

var (
	once sync.Once
	info Info
)

// GetInfo returns build metadata. Instance ID and hostname are computed once
// per process.
func GetInfo() Info {
	once.Do(func() {
		info = Info{
			Version:    Version,
			GitCommit:  GitCommit,
			BuildDate:  BuildDate,
			InstanceID: uuid.New().String(),
			Hostname:   getHostname(),
		}
	})
	return info
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}

// UserAgent is the User-Agent sent by the verifier.
func (i Info) UserAgent() string {
	return "verify-commit/" + i.Version
}

// String formats version info for --version output.
func (i Info) String() string {
	return fmt.Sprintf("verify-commit version %s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildDate)
}
