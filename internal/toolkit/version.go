package toolkit

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

var dottedVersionRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)+$`)

// trailingVersionToken returns the last whitespace-separated token of the
// first line of text when it looks like a dotted version number, or "" when
// no such token exists.
func trailingVersionToken(text string) string {
	fields := strings.Fields(firstLine(strings.TrimSpace(text)))
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	if dottedVersionRegex.MatchString(last) {
		return last
	}
	return ""
}

func meetsMinimum(version, minimum string) bool {
	if minimum == "" {
		return true
	}
	if version == "" {
		return false
	}

	vParts := numericParts(version)
	mParts := numericParts(minimum)
	for len(vParts) < len(mParts) {
		vParts = append(vParts, 0)
	}
	for len(mParts) < len(vParts) {
		mParts = append(mParts, 0)
	}
	for i := 0; i < len(vParts) && i < len(mParts); i++ {
		if vParts[i] > mParts[i] {
			return true
		}
		if vParts[i] < mParts[i] {
			return false
		}
	}
	return true
}

func numericParts(version string) []int {
	var parts []int
	current := strings.Builder{}
	for _, r := range version {
		if r >= '0' && r <= '9' {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			val, _ := strconv.Atoi(current.String())
			parts = append(parts, val)
			current.Reset()
		}
	}
	if current.Len() > 0 {
		val, _ := strconv.Atoi(current.String())
		parts = append(parts, val)
	}
	return parts
}

// DetectCCVersion asks the host C compiler for its version via -dumpversion.
// An unavailable compiler or unreadable output yields "", never an error; the
// version-gated flags are simply skipped in that case.
func DetectCCVersion(ctx context.Context, runner Runner, cc string) string {
	if cc == "" {
		return ""
	}
	result, err := runner.Run(ctx, cc, "-dumpversion")
	if err != nil {
		return ""
	}
	line := firstLine(strings.TrimSpace(string(result.Stdout)))
	if line == "" {
		return ""
	}
	if len(numericParts(line)) == 0 {
		return ""
	}
	return line
}

var nvccReleaseRegex = regexp.MustCompile(`release ([0-9]+(?:\.[0-9]+)*)`)

// DetectToolkitVersion runs the toolkit's nvcc and extracts the release
// number from its banner. Failure reports "", non-fatally.
func DetectToolkitVersion(ctx context.Context, runner Runner, loc Location) string {
	nvcc := filepath.Join(loc.BinDir(), "nvcc")
	result, err := runner.Run(ctx, nvcc, "--version")
	if err != nil {
		return ""
	}
	match := nvccReleaseRegex.FindSubmatch(result.Stdout)
	if match == nil {
		return ""
	}
	return string(match[1])
}
