package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsTerm(t *testing.T) {
	text := NormalizeText("Built services in Go and C++; used Google Cloud.\nSome   Node.js too, and python.")
	cases := map[string]bool{
		"go":           true,
		"c++":          true,
		"c":            false,
		"google":       true,
		"goo":          false,
		"python":       true,
		"node.js":      true,
		"google cloud": true,
		"":             false,
	}
	for term, want := range cases {
		assert.Equal(t, want, ContainsTerm(text, term), term)
	}
}

func TestContainsTermRepeatedCandidates(t *testing.T) {
	// first occurrence is inside a word, second one is standalone
	assert.True(t, ContainsTerm("golang and go", "go"))
	assert.False(t, ContainsTerm("cargo gopher", "go"))
}

func TestContainsTermTypography(t *testing.T) {
	cases := []struct {
		text string
		term string
		want bool
	}{
		{"bachelor’s degree", "bachelor", true},
		{"skills: •python •docker", "python", true},
		{"skills: •python •docker", "docker", true},
		{"go’s concurrency model", "go", true},
		{"python—django", "python", true},
		{"python—django", "django", true},
		{"«kubernetes»", "kubernetes", true},
		{"goрутины", "go", false},
		{"pythonista", "python", false},
		{"éjava", "java", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ContainsTerm(tc.text, tc.term), "%q in %q", tc.term, tc.text)
	}
}

func TestSkillVariants(t *testing.T) {
	assert.ElementsMatch(t, []string{"go", "golang"}, SkillVariants("Go"))
	assert.ElementsMatch(t, []string{"kubernetes", "k8s"}, SkillVariants("kubernetes"))
	assert.Equal(t, []string{"rust"}, SkillVariants(" Rust "))
	assert.Empty(t, SkillVariants("  "))
}

func TestCanonicalSkill(t *testing.T) {
	assert.Equal(t, "postgresql", CanonicalSkill("Postgres"))
	assert.Equal(t, "python", CanonicalSkill("python"))
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "2024"}, Words("Hello, WORLD! 2024"))
}
