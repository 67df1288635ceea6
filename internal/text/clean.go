package text

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// Elements whose content is never rendered are removed together with
	// their content. RE2 has no backreferences, so one pattern per tag.
	hiddenElementRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script\b.*?</script\s*>`),
		regexp.MustCompile(`(?is)<style\b.*?</style\s*>`),
		regexp.MustCompile(`(?is)<noscript\b.*?</noscript\s*>`),
		regexp.MustCompile(`(?is)<template\b.*?</template\s*>`),
	}
	tagRegex = regexp.MustCompile(`<[^>]+>`)

	decimalRefRegex = regexp.MustCompile(`&#(\d+);`)
	hexRefRegex     = regexp.MustCompile(`(?i)&#x([0-9a-f]+);`)

	controlRegex   = regexp.MustCompile("[\x00-\x08\x0B-\x1F\x7F]")
	blankRunRegex  = regexp.MustCompile(`[ \t]+`)
	lineEdgeRegex  = regexp.MustCompile(` *\n *`)
	extraLineRegex = regexp.MustCompile(`\n{3,}`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&mdash;", "—",
	"&ndash;", "–",
	"&hellip;", "...",
	"&ldquo;", `"`,
	"&rdquo;", `"`,
	"&lsquo;", "'",
	"&rsquo;", "'",
)

// Literal backslash escapes, as left behind by text copied out of JSON or
// source code. Earlier pairs win at the same position.
var escapeReplacer = strings.NewReplacer(
	`\n`, "\n",
	`\t`, " ",
	`\r`, "",
	`\`, "",
)

// CleanText strips markup, decodes entities and escape sequences, removes
// control characters and normalizes whitespace so that paragraphs are
// separated by exactly one blank line.
//
// A single pass can expose new markup (an encoded "&lt;b&gt;" decodes into a
// tag, "&amp;amp;" peels one level per pass), so passes repeat until the text
// stops changing. That makes CleanText idempotent. The loop ends because a
// pass that changes the text either shortens it or turns a tab into a space.
func CleanText(raw string) string {
	s := raw
	for {
		next := cleanPass(s)
		if next == s {
			return s
		}
		s = next
	}
}

func cleanPass(s string) string {
	s = removeTags(s)
	s = decodeEntities(s)
	s = escapeReplacer.Replace(s)
	s = controlRegex.ReplaceAllString(s, "")
	s = blankRunRegex.ReplaceAllString(s, " ")
	s = lineEdgeRegex.ReplaceAllString(s, "\n")
	s = extraLineRegex.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func removeTags(s string) string {
	for _, re := range hiddenElementRegexes {
		s = re.ReplaceAllString(s, "")
	}
	return tagRegex.ReplaceAllString(s, " ")
}

func decodeEntities(s string) string {
	s = entityReplacer.Replace(s)
	s = decimalRefRegex.ReplaceAllStringFunc(s, func(m string) string {
		return decodeCharRef(m[2:len(m)-1], 10)
	})
	s = hexRefRegex.ReplaceAllStringFunc(s, func(m string) string {
		return decodeCharRef(m[3:len(m)-1], 16)
	})
	return s
}

// decodeCharRef turns the digits of a numeric character reference into the
// character they name. References to invalid code points are dropped.
func decodeCharRef(digits string, base int) string {
	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return ""
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		return ""
	}
	return string(r)
}
