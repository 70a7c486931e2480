// Package github checks for new releases of the app on GitHub.
package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-version"
)

var (
	ErrHttpError   = errors.New("HTTP error")
	ErrNoRelease   = errors.New("no release")
	ErrRateLimited = errors.New("rate limited")
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// VersionInfo describes the local and the latest released version of the app.
type VersionInfo struct {
	Local         string
	Remote        string
	Latest        string
	IsRemoteNewer bool
}

// AvailableUpdate reports whether a newer release than the local version exists on GitHub.
func AvailableUpdate(owner, repo, local string) (VersionInfo, error) {
	return availableUpdate(owner, repo, local, fetchGitHubLatest)
}

func availableUpdate(owner, repo, local string, fetch func(owner, repo string) (string, error)) (VersionInfo, error) {
	localV, err := version.NewVersion(local)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("local version %q: %w", local, err)
	}
	remote, err := fetch(owner, repo)
	if err != nil {
		return VersionInfo{}, err
	}
	remoteV, err := version.NewVersion(remote)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("remote version %q: %w", remote, err)
	}
	latest := localV
	isNewer := remoteV.GreaterThan(localV)
	if isNewer {
		latest = remoteV
	}
	v := VersionInfo{
		Local:         localV.String(),
		Remote:        remoteV.String(),
		Latest:        latest.String(),
		IsRemoteNewer: isNewer,
	}
	return v, nil
}

// NormalizeVersion returns a version string without prefixes, e.g. "v0.1.0" becomes "0.1.0".
func NormalizeVersion(v string) (string, error) {
	x, err := version.NewVersion(v)
	if err != nil {
		return "", err
	}
	return x.String(), nil
}

// fetchGitHubLatest returns the tag of the latest published release.
// Drafts and pre-releases are never reported by this endpoint.
func fetchGitHubLatest(owner, repo string) (string, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/releases/latest", owner, repo)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	r, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	switch {
	case r.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%s/%s: %w", owner, repo, ErrNoRelease)
	case (r.StatusCode == http.StatusForbidden || r.StatusCode == http.StatusTooManyRequests) &&
		r.Header.Get("X-RateLimit-Remaining") == "0":
		return "", fmt.Errorf("%s: reset at %s: %w", r.Status, r.Header.Get("X-RateLimit-Reset"), ErrRateLimited)
	case r.StatusCode >= 400:
		return "", fmt.Errorf("%s: %w", r.Status, ErrHttpError)
	}
	var info struct {
		TagName string `json:"tag_name"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return "", err
	}
	if info.TagName == "" {
		return "", fmt.Errorf("%s/%s: missing tag: %w", owner, repo, ErrNoRelease)
	}
	return info.TagName, nil
}
