// Package version tracks the build version and looks for newer releases.
package version

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Version is the current groundcheck release.
const Version = "0.3.0"

// releaseURL is a var so tests can point it at a stub server.
var releaseURL = "https://api.github.com/repos/groundcheck/groundcheck/releases/latest"

// Release represents a GitHub release
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
}

// CheckForUpdates asks GitHub for the latest release and returns its version
// when it is newer than the running build, or "" when already current.
func CheckForUpdates() (string, error) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest("GET", releaseURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "groundcheck-version-checker")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil // No releases yet
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github api returned status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	if IsNewer(Version, latest) {
		return latest, nil
	}

	return "", nil
}

// IsNewer reports whether latest is a newer version string than current.
func IsNewer(current, latest string) bool {
	if latest == "" {
		return false
	}

	cur := strings.Split(current, ".")
	lat := strings.Split(latest, ".")

	for i := 0; i < len(cur) && i < len(lat); i++ {
		cVal, _ := strconv.Atoi(cur[i])
		lVal, _ := strconv.Atoi(lat[i])

		if lVal > cVal {
			return true
		}
		if lVal < cVal {
			return false
		}
	}

	return len(lat) > len(cur)
}
