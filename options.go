package readview

const (
	flagStripUnlikely      = 0x1
	flagWeightClasses      = 0x2
	flagCleanConditionally = 0x4

	// The number of top candidates to consider when analysing how tight the
	// competition is among candidates.
	defaultNTopCandidates = 5

	// The number of characters an article must have for an attempt to be
	// accepted without a retry.
	defaultCharThreshold = 500

	// Readerable defaults: minimum node content length considered, and the
	// cumulative score to reach.
	defaultMinContentLength = 140
	defaultMinScore         = 20
)

// These are the classes that the engine sets itself.
var defaultClassesToPreserve = []string{"page"}

type options struct {
	baseURL           string
	documentURL       string
	urlOverride       bool
	template          []string
	charThreshold     int
	nTopCandidates    int
	classesToPreserve []string
	stripUnlikely     bool
	weightClasses     bool
	cleanConditionally bool
	minContentLength  int
	minScore          float64
}

// Option configures an extraction or readerable call.
type Option func(*options)

func defaultOpts() *options {
	return &options{
		charThreshold:      defaultCharThreshold,
		nTopCandidates:     defaultNTopCandidates,
		classesToPreserve:  defaultClassesToPreserve,
		stripUnlikely:      true,
		weightClasses:      true,
		cleanConditionally: true,
		minContentLength:   defaultMinContentLength,
		minScore:           defaultMinScore,
	}
}

// BaseURL sets the URL that relative links and media sources are resolved
// against. A <base href> in the document overrides it.
func BaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// DocumentURL sets the URL the document was fetched from; it is only used
// by the "url" field of a metadata template.
func DocumentURL(u string) Option {
	return func(o *options) {
		o.documentURL = u
	}
}

// Template lists metadata fields ("title", "byline", "excerpt", "sitename",
// "url", "body") to interleave into the extracted article. Fields before
// the "body" marker are prepended, fields after it appended.
func Template(fields ...string) Option {
	return func(o *options) {
		o.template = fields
	}
}

// CharThreshold overrides the article length below which the grabber
// retries with weakened heuristics.
func CharThreshold(n int) Option {
	return func(o *options) {
		o.charThreshold = n
	}
}

// NTopCandidates overrides the size of the top-candidate list.
func NTopCandidates(n int) Option {
	return func(o *options) {
		o.nTopCandidates = n
	}
}

// StripUnlikely controls the initial state of the unlikely-candidate
// removal pass; the retry loop may clear it.
func StripUnlikely(b bool) Option {
	return func(o *options) {
		o.stripUnlikely = b
	}
}

// WeightClasses controls the initial state of class-weight scoring; the
// retry loop may clear it.
func WeightClasses(b bool) Option {
	return func(o *options) {
		o.weightClasses = b
	}
}

// CleanConditionally controls the initial state of the conditional cleanup
// passes; the retry loop may clear it.
func CleanConditionally(b bool) Option {
	return func(o *options) {
		o.cleanConditionally = b
	}
}

// ClassesToPreserve adds classes that survive the class-stripping pass.
func ClassesToPreserve(classes ...string) Option {
	return func(o *options) {
		o.classesToPreserve = append(o.classesToPreserve, classes...)
	}
}

// MinContentLength sets the minimum node content length used by Readerable.
func MinContentLength(n int) Option {
	return func(o *options) {
		o.minContentLength = n
	}
}

// MinScore sets the cumulative score Readerable must reach.
func MinScore(score float64) Option {
	return func(o *options) {
		o.minScore = score
	}
}
