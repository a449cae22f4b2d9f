// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package release builds the YAML update-info file that update clients
// poll to discover new artifact versions. Release plans are authored
// on disk as JSONC files (JSON extended with comments and trailing
// commas); the emitted update-info is plain YAML with whole-file
// SHA-512 digests.
//
// The typical flow:
//
//  1. ReadPlanFile or ParsePlan: JSONC bytes → Plan
//  2. Plan.Validate: structural checks (version, artifact list)
//  3. Build: hash every artifact → UpdateInfo
//  4. WriteFile: UpdateInfo → YAML on disk
package release

import (
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Plan is a human-authored release plan: which artifacts make up a
// release and where clients will download them from.
type Plan struct {
	// Channel names the release channel (e.g., "latest", "beta").
	// Informational; the emitted file name conventionally derives
	// from it.
	Channel string `json:"channel"`

	// Version is the release version string. Required.
	Version string `json:"version"`

	// BaseURL, when set, prefixes artifact file names to form their
	// download URLs. Artifacts with an explicit URL override it.
	BaseURL string `json:"base_url"`

	// Artifacts lists the release's artifact files in order. The
	// first artifact is the primary one (its name and digest fill
	// the update-info's legacy top-level fields).
	Artifacts []PlanArtifact `json:"artifacts"`
}

// PlanArtifact is one artifact file in a release plan.
type PlanArtifact struct {
	// Path is the artifact's location on disk. Required.
	Path string `json:"path"`

	// URL overrides the download URL derived from BaseURL and the
	// file name.
	URL string `json:"url,omitempty"`
}

// ParsePlan strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Plan.
func ParsePlan(data []byte) (*Plan, error) {
	stripped := jsonc.ToJSON(data)

	var plan Plan
	if err := json.Unmarshal(stripped, &plan); err != nil {
		return nil, fmt.Errorf("parsing release plan: %w", err)
	}
	return &plan, nil
}

// ReadPlanFile reads a JSONC release plan from disk and parses it.
func ReadPlanFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	plan, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return plan, nil
}

// Validate checks that a plan is complete enough to build from.
func (p *Plan) Validate() error {
	if p.Version == "" {
		return fmt.Errorf("release plan has no version")
	}
	if len(p.Artifacts) == 0 {
		return fmt.Errorf("release plan has no artifacts")
	}
	for i, artifact := range p.Artifacts {
		if artifact.Path == "" {
			return fmt.Errorf("artifact %d has no path", i)
		}
	}
	return nil
}

// FileInfo describes one downloadable artifact in the update-info.
type FileInfo struct {
	URL    string `yaml:"url"`
	SHA512 string `yaml:"sha512"`
	Size   int64  `yaml:"size"`
}

// UpdateInfo is the persisted update metadata. The top-level Path and
// SHA512 fields duplicate the first file entry for older clients that
// predate the Files list; both forms must stay populated.
type UpdateInfo struct {
	Version     string     `yaml:"version"`
	Files       []FileInfo `yaml:"files"`
	Path        string     `yaml:"path"`
	SHA512      string     `yaml:"sha512"`
	ReleaseDate string     `yaml:"releaseDate"`
}

// HashFile computes the whole-file SHA-512 digest of the file at
// path, returning the standard-base64 digest and the file size. The
// file is streamed through the hash so memory stays constant
// regardless of artifact size.
func HashFile(path string) (digest string, size int64, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := sha512.New()
	size, err = io.Copy(hasher, file)
	if err != nil {
		return "", 0, fmt.Errorf("hashing %s: %w", path, err)
	}

	return base64.StdEncoding.EncodeToString(hasher.Sum(nil)), size, nil
}

// Build hashes every artifact in the plan and assembles the
// update-info. The release date is recorded from now in UTC RFC 3339
// form.
func Build(plan *Plan, now time.Time) (*UpdateInfo, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	info := &UpdateInfo{
		Version:     plan.Version,
		Files:       make([]FileInfo, 0, len(plan.Artifacts)),
		ReleaseDate: now.UTC().Format(time.RFC3339),
	}

	for _, artifact := range plan.Artifacts {
		digest, size, err := HashFile(artifact.Path)
		if err != nil {
			return nil, err
		}

		url := artifact.URL
		if url == "" {
			url = plan.BaseURL + filepath.Base(artifact.Path)
		}

		info.Files = append(info.Files, FileInfo{URL: url, SHA512: digest, Size: size})
	}

	info.Path = info.Files[0].URL
	info.SHA512 = info.Files[0].SHA512
	return info, nil
}

// Marshal encodes the update-info as YAML.
func (u *UpdateInfo) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encoding update info: %w", err)
	}
	return data, nil
}

// WriteFile persists the update-info as YAML at path.
func WriteFile(path string, info *UpdateInfo) error {
	data, err := info.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing update info %s: %w", path, err)
	}
	return nil
}

// FileName returns the conventional update-info file name for a
// channel: "latest.yml" for the default channel, "<channel>.yml"
// otherwise.
func FileName(channel string) string {
	if channel == "" || channel == "latest" {
		return "latest.yml"
	}
	return channel + ".yml"
}
