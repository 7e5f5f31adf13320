package kiro

// acquireHeaders assembles the header map returned to the host for
// acquire_credential.
func acquireHeaders(accessToken, version, machineID string) map[string]string {
	return map[string]string{
		"Authorization":    "Bearer " + accessToken,
		"Content-Type":     "application/json",
		"x-amz-user-agent": AmzUserAgent(version, machineID),
	}
}

func baseURLFor(region string) string {
	return "https://codewhisperer." + region + ".amazonaws.com"
}
