package kiro

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// defaultKiroVersion is returned whenever the installed Kiro.app version cannot be
// discovered (non-macOS, or the app is absent).
const defaultKiroVersion = "0.1.25"

// spoofedNodeVersion is the fixed literal node_version used in the API User-Agent
// template.
const spoofedNodeVersion = "20.18.0"

// KiroVersion discovers the installed Kiro.app short version string on macOS via
// `defaults read`, falling back to the hardcoded default on any failure or on
// non-macOS platforms. The result is cheap enough to recompute per call.
func KiroVersion() string {
	if runtime.GOOS != "darwin" {
		return defaultKiroVersion
	}
	for _, bundle := range []string{
		"/Applications/Kiro.app/Contents/Info",
		filepath.Join(userHomeDir(), "Applications/Kiro.app/Contents/Info"),
	} {
		out, err := exec.Command("defaults", "read", bundle, "CFBundleShortVersionString").Output()
		if err != nil {
			continue
		}
		if v := strings.TrimSpace(string(out)); v != "" {
			return v
		}
	}
	return defaultKiroVersion
}

func userHomeDir() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return h
}

// OSName maps runtime.GOOS onto the four fingerprint OS buckets.
func OSName() string {
	switch runtime.GOOS {
	case "darwin":
		return "macos"
	case "linux":
		return "linux"
	case "windows":
		return "windows"
	default:
		return "other"
	}
}

// OSVersion discovers the OS version string used in the API User-Agent template,
// with hardcoded fallbacks per platform.
func OSVersion() string {
	switch runtime.GOOS {
	case "darwin":
		out, err := exec.Command("sw_vers", "-productVersion").Output()
		if err == nil {
			if v := strings.TrimSpace(string(out)); v != "" {
				return v
			}
		}
		return "14.0"
	case "linux":
		out, err := exec.Command("uname", "-r").Output()
		if err == nil {
			if v := strings.TrimSpace(string(out)); v != "" {
				return v
			}
		}
		return "6.0"
	case "windows":
		return "10.0"
	default:
		return "0.0"
	}
}

// NodeVersion returns the fixed spoofed node version literal.
func NodeVersion() string { return spoofedNodeVersion }

// UserAgentSocial builds the Social-refresh User-Agent: KiroIDE-<v>-<m>.
func UserAgentSocial(version, machineID string) string {
	return "KiroIDE-" + version + "-" + machineID
}

// UserAgentIdC builds the IdC-refresh User-Agent.
func UserAgentIdC(version, machineID string) string {
	return "aws-sdk-js/3.738.0 ua/2.1 os/other lang/js api/sso-oidc#3.738.0 m/E KiroIDE-" + version + "-" + machineID
}

// UserAgentAPI builds the CodeWhisperer API-call User-Agent.
func UserAgentAPI(version, machineID, osName, nodeVersion string) string {
	return "aws-sdk-js/1.0.0 ua/2.1 os/" + osName + " lang/js md/nodejs#" + nodeVersion + " api/codewhispererruntime#1.0.0 m/E KiroIDE-" + version + "-" + machineID
}

// AmzUserAgent builds the x-amz-user-agent header value.
func AmzUserAgent(version, machineID string) string {
	return "aws-sdk-js/1.0.0 KiroIDE-" + version + "-" + machineID
}
