package feedparser

import (
	"fmt"
	"regexp"
	"strings"
)

// tagPattern extracts one field from an item block. The CDATA variant is
// tried before the plain one so wrapped values are unwrapped cleanly.
type tagPattern struct {
	tag   string
	cdata *regexp.Regexp
	plain *regexp.Regexp
}

func newTagPattern(tag string) tagPattern {
	q := regexp.QuoteMeta(tag)
	return tagPattern{
		tag:   tag,
		cdata: regexp.MustCompile(fmt.Sprintf(`(?is)<%s(?:\s[^>]*)?>\s*<!\[CDATA\[(.*?)\]\]>\s*</%s>`, q, q)),
		plain: regexp.MustCompile(fmt.Sprintf(`(?is)<%s(?:\s[^>]*)?>(.*?)</%s>`, q, q)),
	}
}

// match returns the first non-empty capture across both variants.
func (p tagPattern) match(block string) string {
	for _, re := range []*regexp.Regexp{p.cdata, p.plain} {
		if re == nil {
			continue
		}
		if m := re.FindStringSubmatch(block); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

// attrPattern extracts an attribute value from a (usually self-closing) tag.
type attrPattern struct {
	tag  string
	attr string
	re   *regexp.Regexp
}

func newAttrPattern(tag, attr string) attrPattern {
	return attrPattern{
		tag:  tag,
		attr: attr,
		re: regexp.MustCompile(fmt.Sprintf(`(?is)<%s\s[^>]*?\b%s\s*=\s*["']([^"']+)["']`,
			regexp.QuoteMeta(tag), regexp.QuoteMeta(attr))),
	}
}

func (p attrPattern) match(block string) string {
	if m := p.re.FindStringSubmatch(block); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// fieldTable lists the alternatives per field in the order they are tried.
type fieldTable struct {
	title       []tagPattern
	link        []tagPattern
	linkAttr    []attrPattern
	description []tagPattern
	date        []tagPattern
	image       []attrPattern
}

var itemFields = fieldTable{
	title: []tagPattern{newTagPattern("title")},
	link: []tagPattern{
		// Link text never contains markup; keep the plain variant from
		// swallowing a self-closing Atom <link/> and the tags after it.
		{
			tag:   "link",
			cdata: newTagPattern("link").cdata,
			plain: regexp.MustCompile(`(?is)<link(?:\s[^>]*)?>([^<]*)</link>`),
		},
	},
	linkAttr:    []attrPattern{newAttrPattern("link", "href")},
	description: []tagPattern{newTagPattern("description"), newTagPattern("summary"), newTagPattern("content")},
	date: []tagPattern{
		newTagPattern("pubDate"),
		newTagPattern("published"),
		newTagPattern("updated"),
		newTagPattern("dc:date"),
	},
	image: []attrPattern{
		newAttrPattern("enclosure", "url"),
		newAttrPattern("media:content", "url"),
		newAttrPattern("media:thumbnail", "url"),
		newAttrPattern("itunes:image", "href"),
	},
}

var imgSrcPattern = newAttrPattern("img", "src")

// blockPatterns are tried in order; the first tag with any blocks wins.
var blockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<item(?:\s[^>]*)?>.*?</item>`),
	regexp.MustCompile(`(?is)<entry(?:\s[^>]*)?>.*?</entry>`),
	regexp.MustCompile(`(?is)<article(?:\s[^>]*)?>.*?</article>`),
}

func firstTag(block string, patterns []tagPattern) string {
	for _, p := range patterns {
		if v := p.match(block); v != "" {
			return v
		}
	}
	return ""
}

func firstAttr(block string, patterns []attrPattern) string {
	for _, p := range patterns {
		if v := p.match(block); v != "" {
			return v
		}
	}
	return ""
}
