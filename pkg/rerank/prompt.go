package rerank

import (
	"fmt"
	"strings"
)

const instructions = `INSTRUCTIONS:
1. Analyze each candidate's fit for the role based on:
   - Skills alignment with job requirements (60% weight)
   - Relevant experience level (30% weight)
   - Educational background (10% weight)

2. For each candidate, provide:
   - A match score from 0-100 (higher is better)
   - A brief 1-2 sentence reasoning explaining the score

3. Output your analysis in this exact JSON format, one entry per candidate in the order given:
{
  "candidates": [
    {
      "candidate_number": 1,
      "match_score": 85,
      "reasoning": "Strong technical skills match with relevant experience in required technologies."
    }
  ]
}

Be objective and focus on qualifications relevant to the job requirements. Provide realistic scores based on actual fit.`

func buildPrompt(jobText string, candidates []Candidate) string {
	var b strings.Builder
	b.WriteString("You are an expert HR professional tasked with ranking candidates for a job position.\n\n")
	b.WriteString("JOB DESCRIPTION:\n")
	b.WriteString(strings.TrimSpace(jobText))
	b.WriteString("\n\nCANDIDATES TO EVALUATE:\n")
	for i, c := range candidates {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(candidateSummary(i+1, c))
	}
	b.WriteString("\n\n")
	b.WriteString(instructions)
	return b.String()
}

func candidateSummary(n int, c Candidate) string {
	skills := "Not specified"
	if len(c.Skills) > 0 {
		skills = strings.Join(c.Skills, ", ")
	}
	education := c.Education
	if education == "" {
		education = "Not specified"
	}
	return fmt.Sprintf("Candidate %d: %s\nExperience: %d years\nSkills: %s\nEducation: %s\nInitial Score: %.1f%%",
		n, c.Name, c.ExperienceYears, skills, education, c.Score)
}
