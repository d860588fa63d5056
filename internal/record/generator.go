// Where: internal/record/generator.go
// What: Synthetic record generation for seeding.
// Why: Fresh, constraint-satisfying content on every run without fixtures.
package record

import (
	"fmt"
	"iter"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// Options tunes the shape of generated content. The zero value is invalid;
// use DefaultOptions as a base.
type Options struct {
	Subjects     []string
	Qualifiers   []string
	TagPool      []string
	MaxTags      int
	MaxReflinks  int
	PublishedBy  []string
	ReferenceURL string
}

// DefaultOptions returns the stock generation rules.
func DefaultOptions() Options {
	return Options{
		Subjects: []string{
			"onboarding checklist", "incident runbook", "retention policy",
			"release notes", "style guide", "architecture overview",
			"migration plan", "billing summary", "support handbook",
			"capacity report",
		},
		Qualifiers: []string{
			"draft", "reviewed", "archived", "quarterly", "internal",
			"customer-facing", "deprecated", "annotated",
		},
		TagPool: []string{
			"ops", "finance", "engineering", "legal", "hr",
			"security", "product", "design",
		},
		MaxTags:      4,
		MaxReflinks:  2,
		PublishedBy:  []string{"avery", "jordan", "sam", "casey"},
		ReferenceURL: "https://docs.example.com",
	}
}

// Generator produces finite sequences of valid DomainRecords.
// A Generator has no side effects and may be invoked repeatedly, including
// from concurrent goroutines; each call yields independently random content
// from a random source owned by that call's sequence alone.
type Generator struct {
	opts Options

	// seed hands out per-sequence random sources; it is the only state
	// shared across Generate calls.
	mu   sync.Mutex
	seed *rand.Rand
}

// NewGenerator validates the generation rules and returns a Generator.
// Malformed rules are a construction-time fault, never a per-call error.
func NewGenerator(opts Options) (*Generator, error) {
	if len(opts.Subjects) == 0 {
		return nil, fmt.Errorf("generator: subjects pool is empty")
	}
	if len(opts.Qualifiers) == 0 {
		return nil, fmt.Errorf("generator: qualifiers pool is empty")
	}
	if opts.MaxTags < 0 || opts.MaxReflinks < 0 {
		return nil, fmt.Errorf("generator: negative pool bounds")
	}
	if opts.ReferenceURL != "" && !strings.HasPrefix(opts.ReferenceURL, "http") {
		return nil, fmt.Errorf("generator: reference URL must be absolute")
	}

	g := &Generator{
		opts: opts,
		seed: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	// Probe once so rule mistakes surface here, not mid-import.
	probe := (&sequence{opts: opts, rng: g.newRand()}).next()
	if err := probe.Validate(); err != nil {
		return nil, fmt.Errorf("generator: rules produce invalid records: %w", err)
	}
	return g, nil
}

// Generate returns a lazy, finite sequence of count records.
// The sequence is single-use; call Generate again for fresh records. Each
// sequence owns its random source, so sequences obtained concurrently never
// contend.
func (g *Generator) Generate(count int) iter.Seq[DomainRecord] {
	seq := &sequence{opts: g.opts, rng: g.newRand()}
	return func(yield func(DomainRecord) bool) {
		for i := 0; i < count; i++ {
			if !yield(seq.next()) {
				return
			}
		}
	}
}

func (g *Generator) newRand() *rand.Rand {
	g.mu.Lock()
	defer g.mu.Unlock()
	return rand.New(rand.NewPCG(g.seed.Uint64(), g.seed.Uint64()))
}

// sequence carries the state of one Generate call.
type sequence struct {
	opts Options
	rng  *rand.Rand
}

func (g *sequence) next() DomainRecord {
	rec := DomainRecord{
		Title:       g.title(),
		Tags:        g.tags(),
		Sensitivity: g.sensitivity(),
		References:  g.references(),
	}

	if g.rng.IntN(10) < 7 {
		desc := g.description()
		rec.Description = &desc
	}

	// Roughly half the records carry publication provenance. PublishedOn is
	// deliberately unrelated to the later ImportedOn stamp.
	if len(g.opts.PublishedBy) > 0 && g.rng.IntN(2) == 0 {
		by := g.pick(g.opts.PublishedBy)
		on := time.Now().UTC().AddDate(0, 0, -g.rng.IntN(365))
		rec.PublishedBy = &by
		rec.PublishedOn = &on
	}

	return rec
}

func (g *sequence) title() string {
	title := fmt.Sprintf("%s %s %03d",
		g.pick(g.opts.Qualifiers), g.pick(g.opts.Subjects), g.rng.IntN(1000))
	if len(title) > 100 {
		title = title[:100]
	}
	return title
}

func (g *sequence) description() string {
	sentences := make([]string, 0, 3)
	for i := 0; i <= g.rng.IntN(3); i++ {
		sentences = append(sentences, fmt.Sprintf(
			"Covers the %s %s for environment seeding.",
			g.pick(g.opts.Qualifiers), g.pick(g.opts.Subjects)))
	}
	desc := strings.Join(sentences, " ")
	if len(desc) > 800 {
		desc = desc[:800]
	}
	return desc
}

func (g *sequence) tags() []string {
	if len(g.opts.TagPool) == 0 || g.opts.MaxTags == 0 {
		return []string{}
	}
	count := g.rng.IntN(g.opts.MaxTags + 1)
	tags := make([]string, 0, count)
	for i := 0; i < count; i++ {
		tags = append(tags, g.pick(g.opts.TagPool))
	}
	return tags
}

func (g *sequence) sensitivity() Sensitivity {
	levels := Levels()
	// Bias toward Public; restricted seed data is the exception.
	weights := []int{5, 3, 2, 1}
	total := 0
	for _, w := range weights {
		total += w
	}
	n := g.rng.IntN(total)
	for i, w := range weights {
		if n < w {
			return levels[i]
		}
		n -= w
	}
	return SensitivityPublic
}

func (g *sequence) references() []Hyperlink {
	if g.opts.MaxReflinks == 0 || g.opts.ReferenceURL == "" {
		return []Hyperlink{}
	}
	count := g.rng.IntN(g.opts.MaxReflinks + 1)
	links := make([]Hyperlink, 0, count)
	for i := 0; i < count; i++ {
		subject := g.pick(g.opts.Subjects)
		links = append(links, Hyperlink{
			URL:        fmt.Sprintf("%s/%s", g.opts.ReferenceURL, strings.ReplaceAll(subject, " ", "-")),
			Title:      subject,
			IsExternal: true,
			IsTrusted:  false,
		})
	}
	return links
}

func (g *sequence) pick(pool []string) string {
	return pool[g.rng.IntN(len(pool))]
}
