// Package report parses command output and renders the final device table.
package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cdot65/redistribution-client-checker/internal/models"
)

var (
	reServiceStatus = regexp.MustCompile(`Redistribution service:\s+(\w+)`)
	reSSLConfig     = regexp.MustCompile(`SSL config:\s+(.+)`)
	reClientCount   = regexp.MustCompile(`number of clients:\s+(\d+)`)
)

// ParseStatus extracts the redistribution fields from the raw output of
// `show redistribution service status`. Fields absent from the output stay
// at their zero value; the caller decides whether that is fatal.
func ParseStatus(output string) models.StatusReport {
	var r models.StatusReport

	if m := reServiceStatus.FindStringSubmatch(output); m != nil {
		r.RedistributionStatus = m[1]
	}

	if m := reSSLConfig.FindStringSubmatch(output); m != nil {
		// "Default certificates" -> "default_certificates"
		cfg := strings.TrimSpace(m[1])
		r.SSLConfig = strings.ReplaceAll(strings.ToLower(cfg), " ", "_")
	}

	if m := reClientCount.FindStringSubmatch(output); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			r.NumberOfClients = n
		}
	}

	return r
}
