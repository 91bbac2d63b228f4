package search

import (
	"net/url"
	"strings"

	"github.com/plumeworks/plume/internal/document"
)

// academicHosts match by substring against the hostname.
var academicHosts = []string{
	".edu",
	".ac.",
	"arxiv.org",
	"doi.org",
	"jstor.org",
	"ncbi.nlm.nih.gov",
	"scholar.google",
}

// authoritativeHosts are established publishers and standards bodies.
var authoritativeHosts = []string{
	"ieee.org",
	"acm.org",
	"w3.org",
	"ietf.org",
	"iso.org",
	"nist.gov",
	"britannica.com",
	"nature.com",
	"sciencedirect.com",
	"springer.com",
	"oreilly.com",
}

var reputableHosts = []string{
	"wikipedia.org",
	"wikidata.org",
	"wiktionary.org",
	"github.com",
	"stackoverflow.com",
	"stackexchange.com",
	"mozilla.org",
}

var communityHosts = []string{
	"reddit.com",
	"quora.com",
	"medium.com",
	"forum.",
	"forums.",
	"community.",
	"discourse.",
}

// ReliabilityFromURL grades a source URL by its host. Unknown hosts are
// UNCERTAIN rather than wrong: the fact checker weighs them accordingly.
func ReliabilityFromURL(rawURL string) document.Reliability {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return document.ReliabilityUncertain
	}
	host := strings.ToLower(u.Hostname())

	if strings.HasPrefix(host, "docs.") || strings.HasPrefix(host, "developer.") || strings.HasPrefix(host, "dev.") {
		return document.ReliabilityOfficial
	}
	if strings.HasSuffix(host, ".gov") {
		return document.ReliabilityOfficial
	}
	for _, h := range academicHosts {
		if strings.Contains(host, h) {
			return document.ReliabilityAcademic
		}
	}
	for _, h := range authoritativeHosts {
		if strings.Contains(host, h) {
			return document.ReliabilityAuthoritative
		}
	}
	for _, h := range reputableHosts {
		if strings.Contains(host, h) {
			return document.ReliabilityReputable
		}
	}
	for _, h := range communityHosts {
		if strings.Contains(host, h) {
			return document.ReliabilityCommunity
		}
	}
	return document.ReliabilityUncertain
}
