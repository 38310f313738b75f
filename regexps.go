package readview

import "regexp"

// All of the regular expressions in use within readview.
// Compiled up here once so we don't instantiate them repeatedly in loops.
// The literals are compatibility-sensitive and mirror the reader-view
// heuristics verbatim; do not "optimize" them.
var (
	unlikelyRe  = regexp.MustCompile(`(?i)-ad-|ai2html|banner|breadcrumbs|combx|comment|community|cover-wrap|disqus|extra|footer|gdpr|header|legends|menu|related|remark|replies|rss|shoutbox|sidebar|skyscraper|social|sponsor|supplemental|ad-break|agegate|pagination|pager|popup|yom-remote`)
	candidateRe = regexp.MustCompile(`(?i)and|article|body|column|content|main|shadow`)
	bylineRe    = regexp.MustCompile(`(?i)byline|author|dateline|writtenby|p-author`)
	negativeRe  = regexp.MustCompile(`(?i)hidden|^hid$| hid$| hid |^hid |banner|combx|comment|com-|contact|foot|footer|footnote|gdpr|masthead|media|meta|outbrain|promo|related|scroll|share|shoutbox|sidebar|skyscraper|sponsor|shopping|tags|tool|widget`)
	positiveRe  = regexp.MustCompile(`(?i)article|body|content|entry|hentry|h-entry|main|page|pagination|post|text|blog|story`)

	sentenceDotRe = regexp.MustCompile(`\.( |$)`)
	imgextRe      = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp)`)
	srcsetRe      = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp)\s+\d`)
	srcRe         = regexp.MustCompile(`(?i)^\s*\S+\.(jpg|jpeg|png|webp)\S*\s*$`)
	videosRe      = regexp.MustCompile(`(?i)//(www\.)?((dailymotion|youtube|youtube-nocookie|player\.vimeo|v\.qq)\.com|(archive|upload\.wikimedia)\.org|player\.twitch\.tv)`)
	shareRe       = regexp.MustCompile(`(?i)(^|[\s_])(share|sharedaddy)($|[\s_]|_)`)
	absoluteRe    = regexp.MustCompile(`(?i)^([a-z]+:)?//`)
	b64DataURLRe  = regexp.MustCompile(`(?i)^data:\s*[^\s;,]+\s*;\s*base64\s*,`)
	hasContentRe  = regexp.MustCompile(`\S$`)

	// <meta> attribute patterns: property is a colon-separated pair, name
	// additionally allows weibo prefixes and a dot separator.
	propertyRe = regexp.MustCompile(`(?i)\s*(dc|dcterm|og|twitter)\s*:\s*(author|creator|description|title|site_name)\s*`)
	nameRe     = regexp.MustCompile(`(?i)^\s*((dc|dcterm|og|twitter|weibo:(article|webpage))\s*[.:]\s*)?(author|creator|description|title|site_name)\s*$`)

	// Decimal numeric character references. Hex support is a known TODO.
	decimalEntityRe = regexp.MustCompile(`&#([0-9]{1,7});`)
)
