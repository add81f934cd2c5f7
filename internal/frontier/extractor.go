package frontier

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ctu-chatbot/harvester/pkg/qa"
)

var (
	// markdownLinkPattern matches [text](url) links.
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)

	// bareURLPattern matches http(s) URLs appearing as plain text.
	bareURLPattern = regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+")
)

// trailingPunct is stripped from the end of bare URLs captured mid-sentence
// so that punctuation never corrupts the link target.
const trailingPunct = ",.)];:!?"

type rawLink struct {
	start     int
	end       int
	url       string
	anchor    string
	discovery qa.DiscoveryType
}

// ExtractLinks finds every link in a block of markdown-flavored text and
// returns one candidate per distinct URL, in first-occurrence order.
// Categories and priorities are left unset; see Classifier.
func ExtractLinks(text string) []qa.LinkCandidate {
	var links []rawLink

	// Markdown links first so their spans can shadow the bare-URL matches
	// the same link produces.
	mdSpans := make([][2]int, 0)
	for _, m := range markdownLinkPattern.FindAllStringSubmatchIndex(text, -1) {
		anchor := text[m[2]:m[3]]
		target := strings.TrimSpace(text[m[4]:m[5]])
		mdSpans = append(mdSpans, [2]int{m[0], m[1]})
		if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
			continue
		}
		links = append(links, rawLink{
			start:     m[0],
			end:       m[1],
			url:       target,
			anchor:    strings.TrimSpace(anchor),
			discovery: qa.DiscoveryMarkdownLink,
		})
	}

	for _, m := range bareURLPattern.FindAllStringIndex(text, -1) {
		if insideAny(m[0], mdSpans) {
			continue
		}
		url := trimTrailingPunct(text[m[0]:m[1]])
		if url == "" {
			continue
		}
		links = append(links, rawLink{
			start:     m[0],
			end:       m[1],
			url:       url,
			anchor:    url,
			discovery: qa.DiscoveryBareURL,
		})
	}

	sort.SliceStable(links, func(i, j int) bool { return links[i].start < links[j].start })

	seen := make(map[string]struct{}, len(links))
	candidates := make([]qa.LinkCandidate, 0, len(links))
	for _, l := range links {
		if _, ok := seen[l.url]; ok {
			continue
		}
		seen[l.url] = struct{}{}
		candidates = append(candidates, qa.LinkCandidate{
			URL:        l.url,
			AnchorText: l.anchor,
			Discovery:  l.discovery,
		})
	}

	return candidates
}

func insideAny(pos int, spans [][2]int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}

func trimTrailingPunct(url string) string {
	return strings.TrimRight(url, trailingPunct)
}
