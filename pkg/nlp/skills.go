package nlp

// aliases maps spellings found in resumes to the vocabulary term they stand for.
var aliases = map[string]string{
	"golang":     "go",
	"postgres":   "postgresql",
	"k8s":        "kubernetes",
	"js":         "javascript",
	"ts":         "typescript",
	"node.js":    "nodejs",
	"vue.js":     "vue",
	"react.js":   "react",
	"reactjs":    "react",
	"next.js":    "nextjs",
	"nuxt.js":    "nuxtjs",
	"angularjs":  "angular",
	"express.js": "express",
	"vscode":     "vs code",
	"gitlab-ci":  "gitlab ci",
}

// SkillVariants returns the spellings that count as a mention of skill:
// the skill itself first, then every alias resolving to it.
func SkillVariants(skill string) []string {
	base := NormalizeText(skill)
	if base == "" {
		return []string{}
	}
	out := []string{base}
	for alias, canonical := range aliases {
		if canonical == base {
			out = append(out, alias)
		}
	}
	return out
}

// CanonicalSkill folds an alias onto its vocabulary term.
func CanonicalSkill(s string) string {
	s = NormalizeText(s)
	if c, ok := aliases[s]; ok {
		return c
	}
	return s
}
