// Package hashtag extracts normalized hashtags from post captions.
package hashtag

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var tagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// Parse returns the hashtags found in caption, lowercased and deduplicated,
// in order of first appearance. The leading '#' is stripped.
func Parse(caption string) []string {
	if caption == "" {
		return nil
	}

	matches := tagPattern.FindAllStringSubmatch(caption, -1)
	if len(matches) == 0 {
		return nil
	}

	tags := lo.Map(matches, func(m []string, _ int) string {
		return strings.ToLower(m[1])
	})

	return lo.Uniq(tags)
}
