package attributes

import "github.com/artem13815/shortlist/pkg/nlp"

// noRequirementsScore is reported when the job text names no vocabulary skill.
const noRequirementsScore = 50.0

// SkillsMatch is how many of the vocabulary skills named in a job text a candidate has.
type SkillsMatch struct {
	Percent float64  `json:"percent"`
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
}

// MatchSkills compares candidate skills against the vocabulary skills required by jobText.
func (e *Extractor) MatchSkills(skills []string, jobText string) SkillsMatch {
	required := e.skillsIn(nlp.NormalizeText(jobText))
	out := SkillsMatch{Matched: []string{}, Missing: []string{}}
	if len(skills) == 0 {
		out.Missing = append(out.Missing, required...)
		return out
	}
	if len(required) == 0 {
		out.Percent = noRequirementsScore
		return out
	}
	have := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		have[nlp.CanonicalSkill(s)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := have[r]; ok {
			out.Matched = append(out.Matched, r)
		} else {
			out.Missing = append(out.Missing, r)
		}
	}
	out.Percent = min(100, float64(len(out.Matched))/float64(len(required))*100)
	return out
}
