package publish

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/docd/internal/config"
	"git.home.luguber.info/inful/docd/internal/logfields"
	"git.home.luguber.info/inful/docd/internal/tree"
)

// cacheKeyLength is the number of build id hex characters page shells use for cache busting.
const cacheKeyLength = 6

// SiteInfo is the site metadata exposed to page shells.
type SiteInfo struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Name     string `json:"name"`
	Footer   string `json:"footer"`
	HomeAddr string `json:"home_addr,omitempty"`
}

// BuildInfo is the content of build-info.json.
type BuildInfo struct {
	BuildID      string            `json:"build_id"`
	CacheKey     string            `json:"cache_key"`
	Version      string            `json:"version"`
	SourceCommit string            `json:"source_commit"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
	Site         SiteInfo          `json:"site"`
	Nodes        int               `json:"nodes"`
	Pages        int               `json:"pages"`
	Documents    int               `json:"documents"`
	Fingerprints map[string]string `json:"fingerprints"`
	Warnings     []tree.Warning    `json:"warnings,omitempty"`
}

// ReadBuildInfo decodes build-info.json at path.
func ReadBuildInfo(path string) (*BuildInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bi BuildInfo
	if err := json.Unmarshal(data, &bi); err != nil {
		return nil, err
	}
	return &bi, nil
}

func siteInfo(s config.SiteConfig) SiteInfo {
	return SiteInfo{Title: s.Title, Author: s.Author, Name: s.Name, Footer: s.Footer, HomeAddr: s.HomeAddr}
}

// cacheKey derives the short cache-busting key from a build id.
func cacheKey(buildID string) string {
	hex := make([]byte, 0, cacheKeyLength)
	for i := 0; i < len(buildID) && len(hex) < cacheKeyLength; i++ {
		if buildID[i] != '-' {
			hex = append(hex, buildID[i])
		}
	}
	return string(hex)
}

// fingerprint returns the content fingerprint of a page source.
func fingerprint(content []byte) string {
	return mdfp.CalculateFingerprintFromParts("", string(content))
}

// sourceCommit returns the HEAD commit of the git repository containing dir, or "" when
// dir is not inside a repository or HEAD cannot be resolved.
func sourceCommit(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		slog.Debug("Source repository has no resolvable HEAD", logfields.Path(dir), logfields.Error(err))
		return ""
	}
	return ref.Hash().String()
}
