package attributes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/artem13815/shortlist/pkg/nlp"
)

const (
	UnknownName      = "Unknown Candidate"
	UnknownEducation = "Not specified"
	maxExplicitYears = 50
	maxRangeYears    = 20
	maxRangeTotal    = 25
	nameSearchLines  = 5
)

var (
	reEmail = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

	rePhoneNA   = regexp.MustCompile(`\+?1?[-.\s]?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})`)
	rePhoneIntl = regexp.MustCompile(`\+?([0-9]{1,3})[-.\s]?([0-9]{3,4})[-.\s]?([0-9]{3,4})[-.\s]?([0-9]{3,4})`)

	reExperience = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\+?\s*years?\s*of\s*experience`),
		regexp.MustCompile(`(\d+)\+?\s*years?\s*experience`),
		regexp.MustCompile(`experience:\s*(\d+)\+?\s*years?`),
		regexp.MustCompile(`(\d+)\+?\s*yrs?\s*experience`),
		regexp.MustCompile(`over\s*(\d+)\s*years?`),
		regexp.MustCompile(`more than\s*(\d+)\s*years?`),
	}
	reYearRange = regexp.MustCompile(`\b((?:19|20)\d{2})\s*(?:-|–|—|to)\s*((?:19|20)\d{2})\b`)
)

// Education is the highest education keyword found in a text.
type Education struct {
	Keyword string `json:"keyword"`
	Rank    int    `json:"rank"`
}

// Label is the keyword, or UnknownEducation when nothing matched.
func (e Education) Label() string {
	if e.Keyword == "" {
		return UnknownEducation
	}
	return e.Keyword
}

// Attributes are the structured signals derived from a candidate document.
// Empty Email/Phone mean not found.
type Attributes struct {
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	ExperienceYears int       `json:"experienceYears"`
	Skills          []string  `json:"skills"`
	Education       Education `json:"education"`
}

type skillTerm struct {
	term     string
	category Category
	variants []string
}

// Extractor derives Attributes from plain text. It is immutable and safe for concurrent use.
type Extractor struct {
	skills []skillTerm
}

// NewExtractor builds an extractor over the default vocabulary plus extra skills.
func NewExtractor(extraSkills ...string) *Extractor {
	e := &Extractor{}
	seen := make(map[string]struct{})
	add := func(term string, c Category) {
		term = nlp.NormalizeText(term)
		if term == "" {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		e.skills = append(e.skills, skillTerm{term: term, category: c, variants: nlp.SkillVariants(term)})
	}
	for _, g := range defaultVocabulary {
		for _, t := range g.terms {
			add(t, g.category)
		}
	}
	for _, t := range extraSkills {
		add(t, CategoryCustom)
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract runs the default extractor.
func Extract(text string) Attributes {
	return defaultExtractor.Extract(text)
}

func (e *Extractor) Extract(text string) Attributes {
	lower := nlp.NormalizeText(text)
	return Attributes{
		Name:            extractName(text),
		Email:           extractEmail(text),
		Phone:           extractPhone(text),
		ExperienceYears: extractExperience(lower),
		Skills:          e.skillsIn(lower),
		Education:       extractEducation(lower),
	}
}

// Categories groups the given skills by vocabulary category.
func (e *Extractor) Categories(skills []string) map[Category][]string {
	index := make(map[string]Category, len(e.skills))
	for _, s := range e.skills {
		index[s.term] = s.category
	}
	out := make(map[Category][]string)
	for _, s := range skills {
		if c, ok := index[s]; ok {
			out[c] = append(out[c], s)
		}
	}
	return out
}

func (e *Extractor) skillsIn(lower string) []string {
	found := []string{}
	for _, s := range e.skills {
		for _, v := range s.variants {
			if nlp.ContainsTerm(lower, v) {
				found = append(found, s.term)
				break
			}
		}
	}
	return found
}

func extractName(text string) string {
	checked := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if checked == nameSearchLines {
			break
		}
		checked++
		if strings.ContainsAny(line, "0123456789@") {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			continue
		}
		if allNameWords(words) {
			return strings.Join(words, " ")
		}
	}
	return UnknownName
}

func allNameWords(words []string) bool {
	for _, w := range words {
		w = strings.ReplaceAll(w, ".", "")
		if w == "" {
			return false
		}
		for _, r := range w {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

func extractEmail(text string) string {
	return reEmail.FindString(text)
}

func extractPhone(text string) string {
	if m := rePhoneNA.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("(%s) %s-%s", m[1], m[2], m[3])
	}
	if m := rePhoneIntl.FindStringSubmatch(text); m != nil {
		return strings.Join(m[1:], "-")
	}
	return ""
}

func extractExperience(lower string) int {
	best, found := 0, false
	for _, re := range reExperience {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			found = true
			best = max(best, min(n, maxExplicitYears))
		}
	}
	if found {
		return best
	}

	total := 0
	for _, m := range reYearRange.FindAllStringSubmatch(lower, -1) {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		total += min(max(end-start, 0), maxRangeYears)
	}
	return min(total, maxRangeTotal)
}

// extractEducation keeps the first keyword at the highest rank found.
// Rank 0 keywords never win over "not specified".
func extractEducation(lower string) Education {
	var best Education
	for _, lvl := range educationLevels {
		if lvl.rank > best.Rank && nlp.ContainsTerm(lower, lvl.keyword) {
			best = Education{Keyword: lvl.keyword, Rank: lvl.rank}
		}
	}
	return best
}
