package config

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"
)

// Profile is a scoring profile kept next to the deployment, e.g.
//
//	weights: {skills: 0.5, experience: 0.4, education: 0.1}
//	thresholds: {shortlist: 80, reject: 45}
//	extra_skills: [graphql, kafka]
type Profile struct {
	Weights *struct {
		Skills     float64 `yaml:"skills"`
		Experience float64 `yaml:"experience"`
		Education  float64 `yaml:"education"`
	} `yaml:"weights"`
	Thresholds *struct {
		Shortlist float64 `yaml:"shortlist"`
		Reject    float64 `yaml:"reject"`
	} `yaml:"thresholds"`
	RerankTopK  int      `yaml:"rerank_top_k"`
	ExtraSkills []string `yaml:"extra_skills"`
}

func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoring profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse scoring profile %s: %w", path, err)
	}
	skills := p.ExtraSkills[:0]
	for _, s := range p.ExtraSkills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			skills = append(skills, s)
		}
	}
	p.ExtraSkills = skills
	return &p, nil
}

// Apply overrides the scoring settings present in the profile.
func (p *Profile) Apply(s *ScoringConfig) {
	if p == nil {
		return
	}
	if p.Weights != nil {
		s.SkillsWeight = p.Weights.Skills
		s.ExperienceWeight = p.Weights.Experience
		s.EducationWeight = p.Weights.Education
	}
	if p.Thresholds != nil {
		s.ShortlistThreshold = p.Thresholds.Shortlist
		s.RejectThreshold = p.Thresholds.Reject
	}
	if p.RerankTopK > 0 {
		s.RerankTopK = p.RerankTopK
	}
	s.ExtraSkills = append(s.ExtraSkills, p.ExtraSkills...)
}
